package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	Action    string             `bson:"action" json:"action"`
	Target    string             `bson:"target" json:"target"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
