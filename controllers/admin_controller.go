package controllers

import (
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
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth logs in the single environment-configured admin identity.
// There is no admin row in the user directory; the sealed session with
// isAdmin set is the whole credential.
func AdminAuth(c *fiber.Ctx) error {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&credentials); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	adminEmail := utils.NormalizeEmail(config.GetEnv("ADMIN_EMAIL", ""))
	adminPassword := config.GetEnv("ADMIN_PASSWORD", "")

	if adminEmail == "" {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Admin login is not configured"})
	}
	if adminPassword == "" {
		// Running production without an admin password blocks admin login
		// outright rather than degrading to any default.
		config.GetLogger().Error("ADMIN_PASSWORD is not set; admin login blocked")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Admin login is not configured"})
	}

	if utils.NormalizeEmail(credentials.Email) != adminEmail {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	passwordOK := false
	if strings.HasPrefix(adminPassword, "$2") {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(adminPassword), []byte(credentials.Password)) == nil
	} else if !config.IsProduction() {
		// Plain-text admin passwords are a development convenience only.
		passwordOK = credentials.Password == adminPassword
	} else {
		config.GetLogger().Error("ADMIN_PASSWORD must be a bcrypt hash in production; admin login blocked")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Admin login is not configured"})
	}

	if !passwordOK {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	if err := utils.WriteSession(c, utils.SessionData{
		UserID:        "admin",
		Email:         adminEmail,
		Name:          "Administrator",
		Plan:          models.PlanEnterprise,
		EmailVerified: true,
		IsAdmin:       true,
	}); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	utils.LogAudit("admin", "Admin logged in", adminEmail)

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"email": adminEmail,
			"role":  "admin",
			"name":  "Administrator",
		},
	})
}

// ListUsers returns a page of the user directory.
func ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	ctx, cancel := utils.GetContext()
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := config.GetCollection("users").Find(ctx, bson.M{}, opts)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		user.Password = ""
		users = append(users, user)
	}

	return c.JSON(fiber.Map{"users": users})
}

// AdminCreateUser creates a user row with any plan, unverified, and
// attempts a verification email.
func AdminCreateUser(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Plan     string `json:"plan"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	input.Email = utils.NormalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}
	if !utils.ValidEmail(input.Email) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
	}
	if input.Plan == "" {
		input.Plan = models.PlanFree
	}
	if !models.ValidPlan(input.Plan) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan"})
	}

	collection := config.GetCollection("users")
	ctx, cancel := utils.GetContext()
	defer cancel()

	existingUser := &models.User{}
	err := collection.FindOne(ctx, bson.M{"email": input.Email}).Decode(existingUser)
	if err == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email already in use"})
	} else if err != mongo.ErrNoDocuments {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check email uniqueness"})
	}

	encodedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process password"})
	}

	emailVerifyToken := utils.GenerateEmailVerificationToken()

	now := time.Now()
	user := models.User{
		ID:                primitive.NewObjectID(),
		Email:             input.Email,
		Password:          encodedPassword,
		Name:              input.Name,
		Plan:              input.Plan,
		EmailVerified:     false,
		EmailVerifyToken:  emailVerifyToken,
		EmailVerifyExpiry: primitive.NewDateTimeFromTime(now.Add(24 * time.Hour)),
		UsageResetAt:      now.AddDate(0, 1, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err = collection.InsertOne(ctx, user); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	emailSent := true
	if err := utils.SendVerificationEmail(user.Email, emailVerifyToken); err != nil {
		emailSent = false
	}

	utils.LogAudit(adminID, "Created user", user.Email)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"emailSent": emailSent,
		"user": fiber.Map{
			"id":    user.ID.Hex(),
			"email": user.Email,
			"plan":  user.Plan,
		},
	})
}

// AdminDeleteUser removes a user row by email.
func AdminDeleteUser(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if req.Email == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	result, err := config.GetCollection("users").DeleteOne(ctx, bson.M{"email": utils.NormalizeEmail(req.Email)})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	if result.DeletedCount == 0 {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	utils.LogAudit(adminID, "Deleted user", req.Email)

	return c.JSON(fiber.Map{"success": true, "message": "User deleted successfully"})
}

// ResetUserPassword sets a new password for a user by email.
func ResetUserPassword(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	var input struct {
		Email       string `json:"email"`
		NewPassword string `json:"password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	input.Email = utils.NormalizeEmail(input.Email)
	input.NewPassword = strings.TrimSpace(input.NewPassword)

	if input.Email == "" || input.NewPassword == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email and password cannot be empty"})
	}

	encodedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	result, err := config.GetCollection("users").UpdateOne(ctx,
		bson.M{"email": input.Email},
		bson.M{"$set": bson.M{
			"password":   encodedPassword,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
	}
	if result.MatchedCount == 0 {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	utils.LogAudit(adminID, "Reset user password", input.Email)

	return c.JSON(fiber.Map{"success": true, "message": "Password updated successfully"})
}

// GetStats returns dashboard counters.
func GetStats(c *fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	userCount, err := config.GetCollection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count users"})
	}
	teamCount, err := config.GetCollection("teams").CountDocuments(ctx, bson.M{})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count teams"})
	}
	pendingInvites, err := config.GetCollection("team_invitations").CountDocuments(ctx, bson.M{
		"status":     models.InvitationPending,
		"expires_at": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count invitations"})
	}

	// Messages this month: counters from lapsed usage windows are stale, so
	// only users inside an active window contribute.
	cursor, err := config.GetCollection("users").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"usage_reset_at": bson.M{"$gt": time.Now()}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$message_count"},
		}}},
	})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to aggregate usage"})
	}
	defer cursor.Close(ctx)

	var messageTotal int64
	if cursor.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
		}
		if err := cursor.Decode(&row); err == nil {
			messageTotal = row.Total
		}
	}

	return c.JSON(fiber.Map{
		"users":               userCount,
		"teams":               teamCount,
		"pending_invitations": pendingInvites,
		"messages":            messageTotal,
	})
}

// GetAuditLogs lists recent audit entries.
func GetAuditLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	ctx, cancel := utils.GetContext()
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cursor, err := config.GetCollection("audit_logs").Find(ctx, bson.M{}, opts)
	if err != nil {
		config.GetLogger().Error("Audit query failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch audit logs"})
	}
	defer cursor.Close(ctx)

	logs := []models.AuditLog{}
	for cursor.Next(ctx) {
		var entry models.AuditLog
		if err := cursor.Decode(&entry); err != nil {
			continue
		}
		logs = append(logs, entry)
	}

	return c.JSON(fiber.Map{"logs": logs})
}
