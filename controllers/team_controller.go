package controllers

import (
	"errors"
	"net/http"
	"strings"
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

// errAdminHasNoTeam marks team routes hit by an admin session, which has no
// directory row and therefore no team.
var errAdminHasNoTeam = errors.New("admin sessions do not belong to a team")

// loadRequesterAndTeam resolves the calling user and their team. Returns
// nil team when the user has none.
func loadRequesterAndTeam(c *fiber.Ctx) (*models.User, *models.Team, error) {
	if isAdmin, _ := c.Locals("is_admin").(bool); isAdmin {
		return nil, nil, errAdminHasNoTeam
	}

	userID := c.Locals("user_id").(string)

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	var user models.User
	if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		return nil, nil, err
	}

	if user.TeamID.IsZero() {
		return &user, nil, nil
	}

	var team models.Team
	if err := config.GetCollection("teams").FindOne(ctx, bson.M{"_id": user.TeamID}).Decode(&team); err != nil {
		if err == mongo.ErrNoDocuments {
			// Dangling team reference; treat as no team.
			return &user, nil, nil
		}
		return nil, nil, err
	}

	return &user, &team, nil
}

func teamResolveError(c *fiber.Ctx, err error) error {
	if err == errAdminHasNoTeam {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Admin sessions do not belong to a team"})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve user"})
}

// CreateTeam creates a team with the caller as sole owner. Gated to pro and
// enterprise plans.
func CreateTeam(c *fiber.Ctx) error {
	var req struct {
		TeamName string `json:"teamName"`
		Plan     string `json:"plan"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	req.TeamName = strings.TrimSpace(req.TeamName)
	if req.TeamName == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Team name is required"})
	}

	user, team, err := loadRequesterAndTeam(c)
	if err != nil {
		return teamResolveError(c, err)
	}
	if team != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "You already belong to a team"})
	}

	// The caller's current plan gates team creation; the cookie's plan is
	// never consulted.
	if !models.PlanAllowsTeams(user.Plan) {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Teams require a pro or enterprise plan"})
	}

	teamPlan := req.Plan
	if teamPlan == "" {
		teamPlan = user.Plan
	}
	if !models.PlanAllowsTeams(teamPlan) {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Teams require a pro or enterprise plan"})
	}

	now := time.Now()
	newTeam := models.Team{
		ID:      primitive.NewObjectID(),
		Name:    req.TeamName,
		Plan:    teamPlan,
		OwnerID: user.ID,
		Members: []models.TeamMember{{
			UserID:   user.ID,
			Email:    user.Email,
			Name:     user.Name,
			Role:     models.RoleOwner,
			JoinedAt: now,
			Verified: user.EmailVerified,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	if _, err := config.GetCollection("teams").InsertOne(ctx, newTeam); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create team"})
	}

	_, err = config.GetCollection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"team_id":    newTeam.ID,
			"team_role":  models.RoleOwner,
			"updated_at": now,
		}},
	)
	if err != nil {
		// Roll back the team document so no half-created team lingers.
		config.GetCollection("teams").DeleteOne(ctx, bson.M{"_id": newTeam.ID})
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign team to user"})
	}

	utils.LogAudit(user.ID.Hex(), "Created team", newTeam.ID.Hex())

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"teamId":  newTeam.ID.Hex(),
	})
}

// GetTeamInfo returns the caller's team, members and — for owners and
// admins — pending invitations.
func GetTeamInfo(c *fiber.Ctx) error {
	user, team, err := loadRequesterAndTeam(c)
	if err != nil {
		return teamResolveError(c, err)
	}

	profile := fiber.Map{
		"name":  user.Name,
		"email": user.Email,
		"plan":  user.Plan,
	}

	if team == nil {
		return c.JSON(fiber.Map{
			"hasTeam": false,
			"user":    profile,
		})
	}

	response := fiber.Map{
		"hasTeam": true,
		"user":    profile,
		"team": fiber.Map{
			"id":         team.ID.Hex(),
			"name":       team.Name,
			"plan":       team.Plan,
			"owner_id":   team.OwnerID.Hex(),
			"members":    team.Members,
			"created_at": team.CreatedAt,
		},
	}

	member, _ := team.FindMember(user.ID)
	if member.Role == models.RoleOwner || member.Role == models.RoleAdmin {
		ctx, cancel := utils.GetContext()
		defer cancel()

		cursor, err := config.GetCollection("team_invitations").Find(ctx, bson.M{
			"team_id":    team.ID,
			"status":     models.InvitationPending,
			"expires_at": bson.M{"$gt": time.Now()},
		})
		if err == nil {
			defer cursor.Close(ctx)
			invitations := []models.Invitation{}
			for cursor.Next(ctx) {
				var inv models.Invitation
				if err := cursor.Decode(&inv); err == nil {
					invitations = append(invitations, inv)
				}
			}
			response["pendingInvitations"] = invitations
		}
	}

	return c.JSON(response)
}

// RemoveMember removes a team member. Requires owner or admin; the last
// owner can never be removed.
func RemoveMember(c *fiber.Ctx) error {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	targetID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	user, team, err := loadRequesterAndTeam(c)
	if err != nil {
		return teamResolveError(c, err)
	}
	if team == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "You do not belong to a team"})
	}

	requester, ok := team.FindMember(user.ID)
	if !ok {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Not a member of this team"})
	}
	target, ok := team.FindMember(targetID)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	}

	if err := team.CanRemoveMember(requester, target); err != nil {
		if err == models.ErrSoleOwner {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Cannot remove the only owner; transfer ownership first"})
		}
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	_, err = config.GetCollection("teams").UpdateOne(ctx,
		bson.M{"_id": team.ID},
		bson.M{
			"$pull": bson.M{"members": bson.M{"user_id": targetID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove member"})
	}

	_, err = config.GetCollection("users").UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$unset": bson.M{"team_id": "", "team_role": ""}},
	)
	if err != nil {
		// The membership entry is gone; a stale user linkage self-heals on
		// the next team load, so log rather than fail the request.
		config.GetLogger().Warn("Failed to clear removed member's team linkage",
			zap.String("user_id", targetID.Hex()),
			zap.Error(err))
	}

	utils.LogAudit(user.ID.Hex(), "Removed team member", targetID.Hex())

	return c.JSON(fiber.Map{"success": true})
}

// TransferOwnership hands the owner role to another member, demoting the
// current owner to admin.
func TransferOwnership(c *fiber.Ctx) error {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	targetID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	user, team, err := loadRequesterAndTeam(c)
	if err != nil {
		return teamResolveError(c, err)
	}
	if team == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "You do not belong to a team"})
	}

	requester, ok := team.FindMember(user.ID)
	if !ok || requester.Role != models.RoleOwner {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Only the owner can transfer ownership"})
	}
	if _, ok := team.FindMember(targetID); !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	}
	if targetID == user.ID {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "You already own this team"})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	teams := config.GetCollection("teams")
	now := time.Now()

	// Promote the target first so the team is never ownerless.
	_, err = teams.UpdateOne(ctx,
		bson.M{"_id": team.ID, "members.user_id": targetID},
		bson.M{"$set": bson.M{
			"members.$.role": models.RoleOwner,
			"owner_id":       targetID,
			"updated_at":     now,
		}},
	)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to transfer ownership"})
	}

	_, err = teams.UpdateOne(ctx,
		bson.M{"_id": team.ID, "members.user_id": user.ID},
		bson.M{"$set": bson.M{"members.$.role": models.RoleAdmin}},
	)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to demote previous owner"})
	}

	// The users' team_role mirrors the membership entries and is what the
	// permission middleware authorizes on, so these writes must land.
	users := config.GetCollection("users")
	for _, change := range []struct {
		id   primitive.ObjectID
		role string
	}{
		{targetID, models.RoleOwner},
		{user.ID, models.RoleAdmin},
	} {
		change := change
		err := withOneRetry(func() error {
			_, err := users.UpdateOne(ctx,
				bson.M{"_id": change.id},
				bson.M{"$set": bson.M{"team_role": change.role}},
			)
			return err
		})
		if err != nil {
			config.GetLogger().Error("Failed to update team role after ownership transfer",
				zap.String("user_id", change.id.Hex()),
				zap.String("role", change.role),
				zap.Error(err))
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update member roles"})
		}
	}

	utils.LogAudit(user.ID.Hex(), "Transferred team ownership", targetID.Hex())

	return c.JSON(fiber.Map{"success": true})
}

// LeaveTeam removes the caller from their team. Owners must transfer
// ownership first.
func LeaveTeam(c *fiber.Ctx) error {
	user, team, err := loadRequesterAndTeam(c)
	if err != nil {
		return teamResolveError(c, err)
	}
	if team == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "You do not belong to a team"})
	}

	member, ok := team.FindMember(user.ID)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "You do not belong to a team"})
	}
	if member.Role == models.RoleOwner {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Owners must transfer ownership before leaving"})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	_, err = config.GetCollection("teams").UpdateOne(ctx,
		bson.M{"_id": team.ID},
		bson.M{
			"$pull": bson.M{"members": bson.M{"user_id": user.ID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to leave team"})
	}

	_, err = config.GetCollection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$unset": bson.M{"team_id": "", "team_role": ""}},
	)
	if err != nil {
		// The membership entry is gone; a stale linkage self-heals on the
		// next team load.
		config.GetLogger().Warn("Failed to clear leaving member's team linkage",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
	}

	utils.LogAudit(user.ID.Hex(), "Left team", team.ID.Hex())

	return c.JSON(fiber.Map{"success": true})
}
