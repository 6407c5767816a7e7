package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan represents a purchasable plan document synced from the billing
// catalog. The `tier` field maps a Stripe product onto one of the plan
// constants; products without a tier in their metadata are ignored by sync.
type Plan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Tier            string             `bson:"tier" json:"tier"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	StripeProductID string             `bson:"stripe_product_id" json:"stripe_product_id"`
	StripePriceID   string             `bson:"stripe_price_id" json:"stripe_price_id"`
	Amount          int64              `bson:"amount" json:"amount"` // smallest currency unit
	Currency        string             `bson:"currency" json:"currency"`
	Interval        string             `bson:"interval" json:"interval"` // "month" or "year"
	Features        []string           `bson:"features,omitempty" json:"features,omitempty"`
	IsActive        bool               `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
