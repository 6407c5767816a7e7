package controllers

import (
	"errors"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/providers"
	"github.com/gofiber/fiber/v2"
)

var (
	providerRegistry = providers.NewRegistry()
	stripeClient     = providers.NewStripeClient()
)

// InitProviders wires up all hosted-API clients. Missing keys are not fatal
// here; individual calls surface 503s with setup hints instead, so a deploy
// without, say, ElevenLabs still serves everything else.
func InitProviders() {
	openai := providers.NewOpenAIProvider()
	openai.Initialize(config.GetOpenAIConfig())
	providerRegistry.Register(openai)

	anthropic := providers.NewAnthropicProvider()
	anthropic.Initialize(config.GetAnthropicConfig())
	providerRegistry.Register(anthropic)

	elevenlabs := providers.NewElevenLabsProvider()
	elevenlabs.Initialize(config.GetElevenLabsConfig())
	providerRegistry.Register(elevenlabs)

	stripeClient.Initialize(config.GetStripeConfig())

	providerRegistry.SetDefaultChat(providers.ProviderOpenAI)
}

// providerError translates provider failures into the response taxonomy:
// missing credentials become a 503 with operator instructions, upstream
// rejections a 502 carrying the upstream status.
func providerError(c *fiber.Ctx, err error) error {
	var cfgErr *providers.ConfigError
	if errors.As(err, &cfgErr) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Service not configured: " + cfgErr.Hint + " and restart the server",
		})
	}

	var upErr *providers.UpstreamError
	if errors.As(err, &upErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": upErr.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Provider request failed",
	})
}
