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

const openAIDefaultModel = "gpt-4o"

// OpenAIProvider implements the ChatProvider interface for OpenAI
type OpenAIProvider struct {
	apiKey  string
	apiBase string
	client  *http.Client
}

type openAIChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider creates a new instance of the OpenAI client
func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{
		apiBase: "https://api.openai.com/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Initialize sets up the client with credentials and configuration
func (p *OpenAIProvider) Initialize(config map[string]string) error {
	p.apiKey = config["api_key"]
	if base, ok := config["api_base"]; ok && base != "" {
		p.apiBase = base
	}
	return nil
}

// Name returns the name of the provider
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete sends a chat completion request to OpenAI
func (p *OpenAIProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, &ConfigError{Provider: ProviderOpenAI, Hint: "set OPENAI_API_KEY"}
	}

	model := req.Model
	if model == "" {
		model = openAIDefaultModel
	}

	messages := req.Messages
	if req.System != "" {
		messages = append([]ChatMessage{{Role: "system", Content: req.System}}, messages...)
	}

	body, err := json.Marshal(openAIChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
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

	var parsed openAIChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse openai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "request failed"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &UpstreamError{Provider: ProviderOpenAI, Status: resp.StatusCode, Message: msg}
	}

	if len(parsed.Choices) == 0 {
		return nil, &UpstreamError{Provider: ProviderOpenAI, Status: resp.StatusCode, Message: "no choices in response"}
	}

	return &ChatResponse{
		Provider:     ProviderOpenAI,
		Model:        parsed.Model,
		Content:      parsed.Choices[0].Message.Content,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		CreatedAt:    time.Now(),
	}, nil
}
