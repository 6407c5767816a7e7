package providers

import (
	"context"
	"fmt"
	"time"
)

// Provider names
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderElevenLabs = "elevenlabs"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request with all necessary details
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse represents a completion returned by a provider
type ChatResponse struct {
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Content      string    `json:"content"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SpeechResult is synthesized audio plus its content type.
type SpeechResult struct {
	Audio       []byte
	ContentType string
}

// UpstreamError is a non-2xx response from a provider API. Handlers
// translate it to a 502 carrying the upstream status.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Message)
}

// ConfigError means a provider is missing a required credential. Handlers
// translate it to a 503 with the setup hint.
type ConfigError struct {
	Provider string
	Hint     string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured: %s", e.Provider, e.Hint)
}

// Provider is the base interface all hosted-API clients implement.
type Provider interface {
	// Initialize sets up the provider with credentials and configuration
	Initialize(config map[string]string) error

	// Name returns the name of the provider
	Name() string
}

// ChatProvider produces chat completions.
type ChatProvider interface {
	Provider
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// SpeechProvider synthesizes speech from text.
type SpeechProvider interface {
	Provider
	Synthesize(ctx context.Context, text, voiceID string) (*SpeechResult, error)
}
