package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestElevenLabsSynthesize(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	p := NewElevenLabsProvider()
	if err := p.Initialize(map[string]string{"api_key": "el-key", "api_base": server.URL}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	result, err := p.Synthesize(context.Background(), "read this aloud", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(result.Audio) != "mp3-bytes" {
		t.Errorf("audio = %q", result.Audio)
	}
	if result.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q", result.ContentType)
	}
	if gotKey != "el-key" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
	// Empty voice falls back to the default voice in the URL.
	if !strings.HasPrefix(gotPath, "/text-to-speech/") || strings.HasSuffix(gotPath, "/text-to-speech/") {
		t.Errorf("path = %q", gotPath)
	}
}

func TestElevenLabsSynthesizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	p := NewElevenLabsProvider()
	if err := p.Initialize(map[string]string{"api_key": "bad", "api_base": server.URL}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	_, err := p.Synthesize(context.Background(), "text", "voice")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", upstream.Status)
	}
}

func TestElevenLabsSynthesizeWithoutKey(t *testing.T) {
	p := NewElevenLabsProvider()
	_, err := p.Synthesize(context.Background(), "text", "")

	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
