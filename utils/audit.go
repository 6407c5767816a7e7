package utils

import (
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LogAudit records an admin-visible action in the audit collection.
// Best-effort: a failed write is logged and swallowed.
func LogAudit(actorID, action, target string) {
	entry := models.AuditLog{
		ID:        primitive.NewObjectID(),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		CreatedAt: time.Now(),
	}

	ctx, cancel := GetContext()
	defer cancel()

	if _, err := config.GetCollection("audit_logs").InsertOne(ctx, entry); err != nil {
		config.GetLogger().Warn("Audit write failed",
			zap.String("action", action),
			zap.Error(err))
	}
}
