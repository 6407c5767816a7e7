package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team member roles
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ProPlanMemberLimit caps pro-tier team size. Enterprise teams are
// unlimited.
const ProPlanMemberLimit = 10

var (
	ErrSoleOwner     = errors.New("cannot remove the only owner of a team")
	ErrNotMember     = errors.New("user is not a member of this team")
	ErrAlreadyMember = errors.New("user is already a member of this team")
)

type TeamMember struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Role     string             `bson:"role" json:"role"` // "owner", "admin" or "member"
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
	Verified bool               `bson:"verified" json:"verified"`
}

type Team struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Plan         string             `bson:"plan" json:"plan"`
	OwnerID      primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Members      []TeamMember       `bson:"members" json:"members"`
	MessageCount int64              `bson:"message_count" json:"message_count"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// FindMember returns the membership entry for a user, if any.
func (t *Team) FindMember(userID primitive.ObjectID) (TeamMember, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return TeamMember{}, false
}

// OwnerCount returns the number of members holding the owner role. The
// invariant is exactly one; the helper exists so removal checks do not rely
// on that holding after partial failures.
func (t *Team) OwnerCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Role == RoleOwner {
			n++
		}
	}
	return n
}

// MemberLimit returns the maximum member count for the team's plan, or 0 for
// unlimited.
func (t *Team) MemberLimit() int {
	if t.Plan == PlanPro {
		return ProPlanMemberLimit
	}
	return 0
}

// CanRemoveMember checks whether requester may remove target from the team.
// Removal of the last owner is rejected outright; ownership must be
// transferred first.
func (t *Team) CanRemoveMember(requester, target TeamMember) error {
	if requester.Role != RoleOwner && requester.Role != RoleAdmin {
		return errors.New("only owners and admins can remove members")
	}
	if target.Role == RoleOwner {
		if requester.Role != RoleOwner {
			return errors.New("only an owner can remove another owner")
		}
		if t.OwnerCount() <= 1 {
			return ErrSoleOwner
		}
	}
	return nil
}
