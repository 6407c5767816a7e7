package middleware

import (
	"net/http"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/models"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthMiddleware resolves the caller's identity from either the sealed
// session cookie or the legacy plain-id cookie. Non-admin identities are
// re-resolved against the user directory on every request; plan and role
// decisions downstream read the fresh row, never the cookie. Admin
// identities have no directory row and are trusted from the sealed claims.
// Every failure is a plain 401; the distinction between missing, tampered
// and stale is logging-only.
func AuthMiddleware(c *fiber.Ctx) error {
	if session, ok := utils.ReadSession(c); ok {
		if session.IsAdmin {
			c.Locals("user_id", session.UserID)
			c.Locals("user_email", session.Email)
			c.Locals("user_name", session.Name)
			c.Locals("user_plan", session.Plan)
			c.Locals("team_role", "")
			c.Locals("is_admin", true)
			return c.Next()
		}
		return resolveUser(c, session.UserID, session.Email)
	}

	// Legacy cookie shim: a raw user id, optionally paired with an email
	// cookie. Read-only; nothing writes these anymore.
	if legacyID := c.Cookies(utils.LegacyAuthCookie); legacyID != "" {
		return resolveUser(c, legacyID, c.Cookies(utils.LegacyUserEmailCookie))
	}

	return unauthenticated(c, "no credential cookie")
}

// resolveUser loads the user row and pins the request identity to it. An
// email mismatch means the id was deleted and recreated; the cookie no
// longer names this row.
func resolveUser(c *fiber.Ctx, userID, cookieEmail string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return unauthenticated(c, "malformed user id in cookie")
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	var user models.User
	err = config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return unauthenticated(c, "user not found")
	}

	if cookieEmail != "" && utils.NormalizeEmail(cookieEmail) != utils.NormalizeEmail(user.Email) {
		return unauthenticated(c, "cookie email does not match directory")
	}

	c.Locals("user_id", user.ID.Hex())
	c.Locals("user_email", user.Email)
	c.Locals("user_name", user.Name)
	c.Locals("user_plan", user.Plan)
	c.Locals("team_role", user.TeamRole)
	c.Locals("is_admin", false)
	return c.Next()
}

func unauthenticated(c *fiber.Ctx, reason string) error {
	config.GetLogger().Debug("Request unauthenticated",
		zap.String("path", c.Path()),
		zap.String("reason", reason))
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthenticated"})
}
