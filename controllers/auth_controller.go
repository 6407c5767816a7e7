package controllers

import (
	"context"
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

// Signup registers a new user on the free plan and issues a session.
func Signup(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	input.Email = utils.NormalizeEmail(input.Email)
	input.Password = strings.TrimSpace(input.Password)
	input.Name = strings.TrimSpace(input.Name)

	if input.Email == "" || input.Password == "" || input.Name == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email, password and name are required"})
	}
	if !utils.ValidEmail(input.Email) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
	}

	collection := config.GetCollection("users")
	ctx, cancel := utils.GetContext()
	defer cancel()

	// Check if email already exists
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
		Plan:              models.PlanFree,
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

	// Verification email is best-effort; the account exists either way.
	emailSent := true
	if err := utils.SendVerificationEmail(user.Email, emailVerifyToken); err != nil {
		emailSent = false
		config.GetLogger().Warn("Verification email failed",
			zap.String("email", user.Email),
			zap.Error(err))
	}

	if err := utils.WriteSession(c, utils.SessionData{
		UserID:        user.ID.Hex(),
		Email:         user.Email,
		Name:          user.Name,
		Plan:          user.Plan,
		EmailVerified: false,
	}); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"emailSent": emailSent,
		"user": fiber.Map{
			"name":  user.Name,
			"email": user.Email,
			"plan":  user.Plan,
		},
	})
}

// Login verifies credentials and issues a session cookie. Unknown email and
// wrong password are indistinguishable to the caller.
func Login(c *fiber.Ctx) error {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&credentials); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	credentials.Email = utils.NormalizeEmail(credentials.Email)
	credentials.Password = strings.TrimSpace(credentials.Password)

	if credentials.Email == "" || credentials.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	collection := config.GetCollection("users")
	ctx, cancel := utils.GetContext()
	defer cancel()

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": credentials.Email}).Decode(&user)
	if err != nil {
		// Burn a hash comparison so this path takes as long as a mismatch.
		utils.CompareDummyPassword(credentials.Password)
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	if !utils.ComparePasswords(user.Password, credentials.Password) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	// Last-login update is best-effort and never blocks the response.
	go func(id primitive.ObjectID) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := config.GetCollection("users").UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"last_login": time.Now()}},
		)
		if err != nil {
			config.GetLogger().Warn("Last-login update failed", zap.Error(err))
		}
	}(user.ID)

	if err := utils.WriteSession(c, utils.SessionData{
		UserID:        user.ID.Hex(),
		Email:         user.Email,
		Name:          user.Name,
		Plan:          user.Plan,
		EmailVerified: user.EmailVerified,
	}); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"name":  user.Name,
			"email": user.Email,
			"plan":  user.Plan,
		},
	})
}

// Logout clears the session cookie.
func Logout(c *fiber.Ctx) error {
	utils.ClearSession(c)
	return c.JSON(fiber.Map{"success": true})
}

// CheckAuth reports whether the caller holds a valid session. Unlike the
// guard it answers 200 either way, so the UI can render logged-out state
// without error handling.
func CheckAuth(c *fiber.Ctx) error {
	session, ok := utils.ReadSession(c)
	if !ok {
		if legacyID := c.Cookies(utils.LegacyAuthCookie); legacyID != "" {
			session = utils.SessionData{
				UserID: legacyID,
				Email:  c.Cookies(utils.LegacyUserEmailCookie),
			}
			ok = true
		}
	}
	if !ok {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	if session.IsAdmin {
		return c.JSON(fiber.Map{
			"authenticated": true,
			"user": fiber.Map{
				"email": session.Email,
				"name":  session.Name,
				"role":  "admin",
			},
		})
	}

	objID, err := primitive.ObjectIDFromHex(session.UserID)
	if err != nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	var user models.User
	err = config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	if session.Email != "" && utils.NormalizeEmail(session.Email) != utils.NormalizeEmail(user.Email) {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"user": fiber.Map{
			"name":           user.Name,
			"email":          user.Email,
			"plan":           user.Plan,
			"email_verified": user.EmailVerified,
		},
	})
}

// VerifyEmail handles email verification links.
func VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Missing verification token"})
	}

	collection := config.GetCollection("users")
	ctx, cancel := utils.GetContext()
	defer cancel()

	var user models.User
	err := collection.FindOne(ctx, bson.M{
		"email_verify_token": token,
		"email_verified":     false,
	}).Decode(&user)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Invalid or expired verification token"})
	}

	if time.Now().After(user.EmailVerifyExpiry.Time()) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Verification token has expired"})
	}

	update := bson.M{
		"$set": bson.M{
			"email_verified":     true,
			"email_verify_token": "",
			"updated_at":         time.Now(),
		},
	}
	if _, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify email"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Email verified successfully"})
}

// GetMe returns the caller's profile, with team name when they belong to
// one.
func GetMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	ctx, cancel := utils.GetContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	err = config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	teamName := ""
	if !user.TeamID.IsZero() {
		var team models.Team
		if err := config.GetCollection("teams").FindOne(ctx, bson.M{"_id": user.TeamID}).Decode(&team); err == nil {
			teamName = team.Name
		}
	}

	user.Password = ""
	return c.JSON(fiber.Map{
		"user":      user,
		"team_name": teamName,
	})
}

// UpdateMe applies a partial profile update for the caller.
func UpdateMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var partialUpdate models.PartialUpdate
	if err := c.BodyParser(&partialUpdate); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	if partialUpdate.Email != nil {
		normalized := utils.NormalizeEmail(*partialUpdate.Email)
		if !utils.ValidEmail(normalized) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
		}
		partialUpdate.Email = &normalized
	}

	updateDoc, err := models.PrepareSafeUpdate(partialUpdate)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare update"})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if _, err = config.GetCollection("users").UpdateOne(ctx, bson.M{"_id": objID}, updateDoc); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Profile updated successfully"})
}
