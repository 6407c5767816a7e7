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
	elevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM"
	elevenLabsModel        = "eleven_monolingual_v1"
)

// ElevenLabsProvider implements the SpeechProvider interface for ElevenLabs
type ElevenLabsProvider struct {
	apiKey  string
	apiBase string
	client  *http.Client
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// NewElevenLabsProvider creates a new instance of the ElevenLabs client
func NewElevenLabsProvider() *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiBase: "https://api.elevenlabs.io/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Initialize sets up the client with credentials and configuration
func (p *ElevenLabsProvider) Initialize(config map[string]string) error {
	p.apiKey = config["api_key"]
	if base, ok := config["api_base"]; ok && base != "" {
		p.apiBase = base
	}
	return nil
}

// Name returns the name of the provider
func (p *ElevenLabsProvider) Name() string {
	return ProviderElevenLabs
}

// Synthesize converts text to speech and returns the audio bytes
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text, voiceID string) (*SpeechResult, error) {
	if p.apiKey == "" {
		return nil, &ConfigError{Provider: ProviderElevenLabs, Hint: "set ELEVENLABS_API_KEY"}
	}

	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModel,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", p.apiBase, voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Provider: ProviderElevenLabs, Status: resp.StatusCode, Message: string(respBody)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return &SpeechResult{Audio: respBody, ContentType: contentType}, nil
}
