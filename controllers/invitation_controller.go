package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/models"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InviteMember creates a pending invitation and mails the invite link.
// The email send is best-effort; a failed send is reported as
// emailSent:false, never a rollback.
func InviteMember(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	req.Email = utils.NormalizeEmail(req.Email)
	if !utils.ValidEmail(req.Email) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if !models.ValidInviteRole(req.Role) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Role must be admin or member"})
	}

	user, team, err := loadRequesterAndTeam(c)
	if err != nil {
		return teamResolveError(c, err)
	}
	if team == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "You do not belong to a team"})
	}

	requester, ok := team.FindMember(user.ID)
	if !ok || (requester.Role != models.RoleOwner && requester.Role != models.RoleAdmin) {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Only owners and admins can invite members"})
	}

	// Member limit is a function of the team's plan, not the inviter's.
	if limit := team.MemberLimit(); limit > 0 && len(team.Members) >= limit {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": fmt.Sprintf("Team member limit reached (%d)", limit)})
	}

	for _, m := range team.Members {
		if utils.NormalizeEmail(m.Email) == req.Email {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "User is already a member of this team"})
		}
	}

	token := utils.GenerateInvitationToken()
	now := time.Now()
	invitation := models.Invitation{
		ID:        primitive.NewObjectID(),
		TeamID:    team.ID,
		InviterID: user.ID,
		Email:     req.Email,
		Role:      req.Role,
		Token:     token,
		Status:    models.InvitationPending,
		CreatedAt: now,
		ExpiresAt: now.Add(models.InvitationTTL),
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	if _, err := config.GetCollection("team_invitations").InsertOne(ctx, invitation); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create invitation"})
	}

	inviteURL := fmt.Sprintf("%s/teams/join?token=%s", config.GetAppURL(), token)
	emailSent := utils.SendInvitationEmail(req.Email, team.Name, inviteURL) == nil

	utils.LogAudit(user.ID.Hex(), "Invited user to team", req.Email)

	return c.JSON(fiber.Map{
		"success":   true,
		"token":     token,
		"inviteUrl": inviteURL,
		"emailSent": emailSent,
	})
}

// AcceptInvitation redeems an invitation token for the calling user. The
// pending→accepted flip is a single conditional update keyed on current
// status and expiry, so two concurrent accepts can never both win.
func AcceptInvitation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	userEmail := c.Locals("user_email").(string)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if req.Token == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Token is required"})
	}

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	invitations := config.GetCollection("team_invitations")
	ctx, cancel := utils.GetContext()
	defer cancel()

	var invite models.Invitation
	err = invitations.FindOne(ctx, bson.M{"token": req.Token}).Decode(&invite)
	if err == mongo.ErrNoDocuments {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Invitation not found"})
	} else if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up invitation"})
	}

	now := time.Now()

	// Expiry is judged by the clock, not the stored status; a row still
	// reading pending past its expiry is dead.
	if invite.Expired(now) {
		invitations.UpdateOne(ctx,
			bson.M{"_id": invite.ID, "status": models.InvitationPending},
			bson.M{"$set": bson.M{"status": models.InvitationExpired}},
		)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invitation has expired"})
	}

	if invite.Status != models.InvitationPending {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Invitation not found"})
	}

	if utils.NormalizeEmail(userEmail) != invite.Email {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "This invitation was sent to a different email address"})
	}

	var user models.User
	err = config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve user"})
	}
	if !user.TeamID.IsZero() && user.TeamID != invite.TeamID {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "You already belong to a team"})
	}

	// Commit point: at most one caller gets MatchedCount 1.
	res, err := invitations.UpdateOne(ctx,
		bson.M{
			"_id":        invite.ID,
			"status":     models.InvitationPending,
			"expires_at": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"status": models.InvitationAccepted}},
	)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to accept invitation"})
	}
	if res.MatchedCount == 0 {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Invitation not found"})
	}

	member := models.TeamMember{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     invite.Role,
		JoinedAt: now,
		Verified: user.EmailVerified,
	}

	// Follow-up writes after the commit point are idempotent: the member
	// push filters out teams that already contain the user, and the user
	// linkage is a plain $set. Each is retried once on failure.
	teamErr := withOneRetry(func() error {
		_, err := config.GetCollection("teams").UpdateOne(ctx,
			bson.M{"_id": invite.TeamID, "members.user_id": bson.M{"$ne": user.ID}},
			bson.M{
				"$push": bson.M{"members": member},
				"$set":  bson.M{"updated_at": now},
			},
		)
		return err
	})
	if teamErr != nil {
		config.GetLogger().Error("Failed to add accepted member to team",
			zap.String("team_id", invite.TeamID.Hex()),
			zap.String("user_id", user.ID.Hex()),
			zap.Error(teamErr))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join team"})
	}

	userErr := withOneRetry(func() error {
		_, err := config.GetCollection("users").UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{
				"team_id":    invite.TeamID,
				"team_role":  invite.Role,
				"updated_at": now,
			}},
		)
		return err
	})
	if userErr != nil {
		config.GetLogger().Error("Failed to set team linkage on accepted user",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(userErr))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join team"})
	}

	utils.LogAudit(user.ID.Hex(), "Accepted team invitation", invite.TeamID.Hex())

	return c.JSON(fiber.Map{"success": true})
}

func withOneRetry(fn func() error) error {
	if err := fn(); err != nil {
		return fn()
	}
	return nil
}
