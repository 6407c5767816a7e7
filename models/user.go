package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan tiers
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// FreePlanMessageLimit is the number of chat messages a free user may send
// per usage window.
const FreePlanMessageLimit = 50

type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password" json:"-"`
	Name              string             `bson:"name" json:"name"`
	Plan              string             `bson:"plan" json:"plan"` // "free", "pro" or "enterprise"
	EmailVerified     bool               `bson:"email_verified" json:"email_verified"`
	EmailVerifyToken  string             `bson:"email_verify_token,omitempty" json:"-"`
	EmailVerifyExpiry primitive.DateTime `bson:"email_verify_expiry,omitempty" json:"-"`
	TeamID            primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	TeamRole          string             `bson:"team_role,omitempty" json:"team_role,omitempty"`
	MessageCount      int64              `bson:"message_count" json:"message_count"`
	UsageResetAt      time.Time          `bson:"usage_reset_at" json:"usage_reset_at"`
	LastLogin         time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidPlan reports whether plan is a known tier.
func ValidPlan(plan string) bool {
	return plan == PlanFree || plan == PlanPro || plan == PlanEnterprise
}

// PlanAllowsTeams reports whether a plan tier may create teams.
func PlanAllowsTeams(plan string) bool {
	return plan == PlanPro || plan == PlanEnterprise
}

// UsageExceeded reports whether the user has run out of metered messages.
// Only the free tier is metered; a usage window that has lapsed counts as
// fresh regardless of the stored counter.
func (u *User) UsageExceeded(now time.Time) bool {
	if u.Plan != PlanFree {
		return false
	}
	if now.After(u.UsageResetAt) {
		return false
	}
	return u.MessageCount >= FreePlanMessageLimit
}

// PartialUpdate represents a safe way to update user profile fields
type PartialUpdate struct {
	Name  *string `json:"name,omitempty" bson:"name,omitempty"`
	Email *string `json:"email,omitempty" bson:"email,omitempty"`
}

// PrepareSafeUpdate creates a safe update document that only updates provided fields
func PrepareSafeUpdate(update PartialUpdate) (bson.M, error) {
	updateDoc := bson.M{}

	if update.Name != nil {
		updateDoc["name"] = *update.Name
	}

	if update.Email != nil {
		updateDoc["email"] = *update.Email
	}

	// Always update the updated_at timestamp
	updateDoc["updated_at"] = time.Now()

	return bson.M{"$set": updateDoc}, nil
}
