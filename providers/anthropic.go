package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicDefaultModel = "claude-3-5-sonnet-20241022"
	anthropicVersion      = "2023-06-01"
	anthropicMaxTokens    = 1024
)

// AnthropicProvider implements the ChatProvider interface for Anthropic
type AnthropicProvider struct {
	apiKey  string
	apiBase string
	client  *http.Client
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicProvider creates a new instance of the Anthropic client
func NewAnthropicProvider() *AnthropicProvider {
	return &AnthropicProvider{
		apiBase: "https://api.anthropic.com/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Initialize sets up the client with credentials and configuration
func (p *AnthropicProvider) Initialize(config map[string]string) error {
	p.apiKey = config["api_key"]
	if base, ok := config["api_base"]; ok && base != "" {
		p.apiBase = base
	}
	return nil
}

// Name returns the name of the provider
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// Complete sends a messages request to Anthropic
func (p *AnthropicProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, &ConfigError{Provider: ProviderAnthropic, Hint: "set ANTHROPIC_API_KEY"}
	}

	model := req.Model
	if model == "" {
		model = anthropicDefaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicMaxTokens
	}

	// Anthropic takes the system prompt outside the message list.
	system := req.System
	messages := make([]ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			if system == "" {
				system = m.Content
			}
			continue
		}
		messages = append(messages, m)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "request failed"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &UpstreamError{Provider: ProviderAnthropic, Status: resp.StatusCode, Message: msg}
	}

	if len(parsed.Content) == 0 {
		return nil, &UpstreamError{Provider: ProviderAnthropic, Status: resp.StatusCode, Message: "empty content in response"}
	}

	return &ChatResponse{
		Provider:     ProviderAnthropic,
		Model:        parsed.Model,
		Content:      parsed.Content[0].Text,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		CreatedAt:    time.Now(),
	}, nil
}
