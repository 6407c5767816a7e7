package models

import (
	"testing"
	"time"
)

func TestInvitationExpired(t *testing.T) {
	now := time.Now()

	fresh := &Invitation{Status: InvitationPending, ExpiresAt: now.Add(InvitationTTL)}
	if fresh.Expired(now) {
		t.Error("fresh invitation reported expired")
	}

	// Expiry is judged by the clock, never by the stored status.
	stale := &Invitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Minute)}
	if !stale.Expired(now) {
		t.Error("past-deadline invitation not reported expired")
	}
}

func TestValidInviteRole(t *testing.T) {
	if !ValidInviteRole(RoleAdmin) || !ValidInviteRole(RoleMember) {
		t.Error("admin/member invite roles rejected")
	}
	// Ownership can only ever be transferred, never granted by invite.
	if ValidInviteRole(RoleOwner) {
		t.Error("owner role allowed through an invitation")
	}
	if ValidInviteRole("") || ValidInviteRole("superuser") {
		t.Error("unknown invite role accepted")
	}
}
