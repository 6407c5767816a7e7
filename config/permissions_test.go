package config

import "testing"

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role, permission string
		want             bool
	}{
		{"owner", "manage_team", true},
		{"owner", "transfer_ownership", true},
		{"owner", "invite_members", true},
		{"admin", "invite_members", true},
		{"admin", "remove_members", true},
		{"admin", "transfer_ownership", false},
		{"admin", "manage_team", false},
		{"member", "view_team", true},
		{"member", "invite_members", false},
		{"member", "remove_members", false},
		{"", "view_team", false},
		{"unknown", "view_team", false},
		{"owner", "unknown_permission", false},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.permission); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}
