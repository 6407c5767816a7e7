package controllers

import (
	"net/http"

	"github.com/SaintVisionAi/saintsal-chat-sub001/providers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
)

// TextToSpeech synthesizes audio for a piece of text and streams it back
// with the upstream content type.
func TextToSpeech(c *fiber.Ctx) error {
	var req struct {
		Text    string `json:"text"`
		VoiceID string `json:"voiceId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if req.Text == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Text is required"})
	}

	speech, err := providerRegistry.Speech(providers.ProviderElevenLabs)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Speech provider unavailable"})
	}

	ctx, cancel := utils.GetLongContext()
	defer cancel()

	result, err := speech.Synthesize(ctx, req.Text, req.VoiceID)
	if err != nil {
		return providerError(c, err)
	}

	c.Set("Content-Type", result.ContentType)
	return c.Send(result.Audio)
}
