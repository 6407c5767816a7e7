package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// InvitationTTL is how long an invitation stays redeemable.
const InvitationTTL = 24 * time.Hour

type Invitation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID    primitive.ObjectID `bson:"team_id" json:"team_id"`
	InviterID primitive.ObjectID `bson:"inviter_id" json:"inviter_id"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"` // "admin" or "member"
	Token     string             `bson:"token" json:"-"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the invitation is past its expiry, regardless of
// the stored status.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// ValidInviteRole reports whether role may be granted through an invitation.
// Ownership is never granted by invite.
func ValidInviteRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}
