package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/models"
	"github.com/SaintVisionAi/saintsal-chat-sub001/providers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Chat forwards a conversation to a chat provider. Free-plan callers are
// metered per month.
func Chat(c *fiber.Ctx) error {
	var req struct {
		Messages []providers.ChatMessage `json:"messages"`
		Model    string                  `json:"model"`
		Provider string                  `json:"provider"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if len(req.Messages) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Messages are required"})
	}

	user, err := meteredCaller(c)
	if err != nil {
		return meteringError(c, err)
	}

	chat, err := providerRegistry.Chat(req.Provider)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Unknown provider"})
	}

	ctx, cancel := utils.GetLongContext()
	defer cancel()

	resp, err := chat.Complete(ctx, providers.ChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
	})
	if err != nil {
		return providerError(c, err)
	}

	if user != nil {
		recordMessageUsage(user)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": resp,
	})
}

// Playground is chat with full knobs: system prompt, temperature and token
// cap. It draws on the same monthly allowance as Chat.
func Playground(c *fiber.Ctx) error {
	var req struct {
		Messages    []providers.ChatMessage `json:"messages"`
		System      string                  `json:"system"`
		Model       string                  `json:"model"`
		Provider    string                  `json:"provider"`
		Temperature float64                 `json:"temperature"`
		MaxTokens   int                     `json:"maxTokens"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if len(req.Messages) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Messages are required"})
	}

	user, err := meteredCaller(c)
	if err != nil {
		return meteringError(c, err)
	}

	chat, err := providerRegistry.Chat(req.Provider)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Unknown provider"})
	}

	ctx, cancel := utils.GetLongContext()
	defer cancel()

	resp, err := chat.Complete(ctx, providers.ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		System:      req.System,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return providerError(c, err)
	}

	if user != nil {
		recordMessageUsage(user)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": resp,
	})
}

// Compare fans one prompt out to both chat providers and returns whatever
// each produced. One provider failing yields a partial result, not an
// error.
func Compare(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if req.Prompt == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Prompt is required"})
	}

	ctx, cancel := utils.GetLongContext()
	defer cancel()

	chatReq := providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: req.Prompt}},
	}

	type result struct {
		name string
		resp *providers.ChatResponse
		err  error
	}

	names := []string{providers.ProviderOpenAI, providers.ProviderAnthropic}
	results := make(chan result, len(names))
	for _, name := range names {
		go func(name string) {
			chat, err := providerRegistry.Chat(name)
			if err != nil {
				results <- result{name: name, err: err}
				return
			}
			resp, err := chat.Complete(ctx, chatReq)
			results <- result{name: name, resp: resp, err: err}
		}(name)
	}

	answers := fiber.Map{}
	for range names {
		r := <-results
		if r.err != nil {
			answers[r.name] = fiber.Map{"error": r.err.Error()}
			continue
		}
		answers[r.name] = r.resp
	}

	return c.JSON(fiber.Map{
		"success": true,
		"results": answers,
	})
}

var errUsageExceeded = errors.New("free plan message limit reached")

// meteredCaller resolves the user whose monthly allowance a completion
// charges. Admin sessions are unmetered and resolve to nil.
func meteredCaller(c *fiber.Ctx) (*models.User, error) {
	if isAdmin, _ := c.Locals("is_admin").(bool); isAdmin {
		return nil, nil
	}
	user, err := loadMeteredUser(c)
	if err != nil {
		return nil, err
	}
	if user.UsageExceeded(time.Now()) {
		return nil, errUsageExceeded
	}
	return user, nil
}

func meteringError(c *fiber.Ctx, err error) error {
	if err == errUsageExceeded {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"error": "Free plan message limit reached; upgrade to pro for unlimited messages",
		})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve user"})
}

func loadMeteredUser(c *fiber.Ctx) (*models.User, error) {
	userID := c.Locals("user_id").(string)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	var user models.User
	if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// recordMessageUsage bumps the caller's message counter, resetting the
// window first if it has lapsed.
func recordMessageUsage(user *models.User) {
	ctx, cancel := utils.GetContext()
	defer cancel()

	now := time.Now()
	var update bson.M
	if now.After(user.UsageResetAt) {
		update = bson.M{"$set": bson.M{
			"message_count":  int64(1),
			"usage_reset_at": now.AddDate(0, 1, 0),
		}}
	} else {
		update = bson.M{"$inc": bson.M{"message_count": 1}}
	}

	if _, err := config.GetCollection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		config.GetLogger().Warn("Usage update failed",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
	}
}
