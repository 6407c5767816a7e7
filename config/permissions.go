package config

var Permissions = map[string]map[string]bool{
	"owner": {
		"manage_team":        true,
		"invite_members":     true,
		"remove_members":     true,
		"view_team":          true,
		"transfer_ownership": true,
	},
	"admin": {
		"invite_members": true,
		"remove_members": true,
		"view_team":      true,
	},
	"member": {
		"view_team": true,
	},
}

// Check if role has permission
func HasPermission(role, permission string) bool {
	perms, exists := Permissions[role]
	if !exists {
		return false
	}
	return perms[permission]
}
