package config

// Provider environment variable keys
const (
	OpenAIKeyEnv     = "OPENAI_API_KEY"
	AnthropicKeyEnv  = "ANTHROPIC_API_KEY"
	ElevenLabsKeyEnv = "ELEVENLABS_API_KEY"

	StripeSecretKeyEnv     = "STRIPE_SECRET_KEY"
	StripeWebhookSecretEnv = "STRIPE_WEBHOOK_SECRET"

	GitHubTokenEnv = "GITHUB_TOKEN"
	VercelTokenEnv = "VERCEL_TOKEN"
	GHLAPIKeyEnv   = "GHL_API_KEY"
)

// GetOpenAIConfig returns OpenAI configuration
func GetOpenAIConfig() map[string]string {
	return map[string]string{
		"api_key": GetEnv(OpenAIKeyEnv, ""),
	}
}

// GetAnthropicConfig returns Anthropic configuration
func GetAnthropicConfig() map[string]string {
	return map[string]string{
		"api_key": GetEnv(AnthropicKeyEnv, ""),
	}
}

// GetElevenLabsConfig returns ElevenLabs configuration
func GetElevenLabsConfig() map[string]string {
	return map[string]string{
		"api_key": GetEnv(ElevenLabsKeyEnv, ""),
	}
}

// GetStripeConfig returns Stripe configuration
func GetStripeConfig() map[string]string {
	return map[string]string{
		"secret_key":     GetEnv(StripeSecretKeyEnv, ""),
		"webhook_secret": GetEnv(StripeWebhookSecretEnv, ""),
	}
}

// GetAppURL returns the public base URL of the app, used in emails and
// billing redirects.
func GetAppURL() string {
	return GetEnv("APP_URL", "http://localhost:8080")
}
