package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newStripeAgainst(t *testing.T, url string) *StripeClient {
	t.Helper()
	s := NewStripeClient()
	if err := s.Initialize(map[string]string{
		"secret_key":     "sk_test_123",
		"webhook_secret": "whsec_test",
		"api_base":       url,
	}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func signWebhook(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhook(t *testing.T) {
	s := newStripeAgainst(t, "http://unused")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"client_reference_id":"user1"}}}`)
	now := time.Now().Unix()

	event, err := s.VerifyWebhook(payload, signWebhook("whsec_test", now, payload))
	if err != nil {
		t.Fatalf("VerifyWebhook: %v", err)
	}
	if event.Type != "checkout.session.completed" {
		t.Errorf("event type = %q", event.Type)
	}
	if event.Data.Object["client_reference_id"] != "user1" {
		t.Errorf("event data = %#v", event.Data.Object)
	}
}

func TestVerifyWebhookRejectsTamperedPayload(t *testing.T) {
	s := newStripeAgainst(t, "http://unused")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	header := signWebhook("whsec_test", time.Now().Unix(), payload)

	tampered := []byte(`{"id":"evt_1","type":"customer.subscription.deleted"}`)
	if _, err := s.VerifyWebhook(tampered, header); err == nil {
		t.Error("tampered payload accepted")
	}
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	s := newStripeAgainst(t, "http://unused")
	payload := []byte(`{"id":"evt_1"}`)
	header := signWebhook("whsec_other", time.Now().Unix(), payload)

	if _, err := s.VerifyWebhook(payload, header); err == nil {
		t.Error("signature from another secret accepted")
	}
}

func TestVerifyWebhookRejectsStaleTimestamp(t *testing.T) {
	s := newStripeAgainst(t, "http://unused")
	payload := []byte(`{"id":"evt_1"}`)
	stale := time.Now().Add(-10 * time.Minute).Unix()

	if _, err := s.VerifyWebhook(payload, signWebhook("whsec_test", stale, payload)); err == nil {
		t.Error("stale signature accepted")
	}
}

func TestVerifyWebhookRejectsMalformedHeader(t *testing.T) {
	s := newStripeAgainst(t, "http://unused")
	for _, header := range []string{"", "t=123", "v1=deadbeef", "nonsense"} {
		if _, err := s.VerifyWebhook([]byte(`{}`), header); err == nil {
			t.Errorf("malformed header %q accepted", header)
		}
	}
}

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_123" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "prod_1", "name": "Pro", "active": true, "metadata": map[string]string{"plan": "pro"}},
			},
			"has_more": false,
		})
	}))
	defer server.Close()

	s := newStripeAgainst(t, server.URL)
	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 1 || products[0].Metadata["plan"] != "pro" {
		t.Errorf("products = %+v", products)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("mode") != "subscription" {
			t.Errorf("mode = %q", r.PostForm.Get("mode"))
		}
		if r.PostForm.Get("line_items[0][price]") != "price_123" {
			t.Errorf("price = %q", r.PostForm.Get("line_items[0][price]"))
		}
		if r.PostForm.Get("client_reference_id") != "user-abc" {
			t.Errorf("client_reference_id = %q", r.PostForm.Get("client_reference_id"))
		}
		if r.PostForm.Get("metadata[plan]") != "pro" {
			t.Errorf("metadata[plan] = %q", r.PostForm.Get("metadata[plan]"))
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_1", "url": "https://checkout.stripe.com/cs_1"})
	}))
	defer server.Close()

	s := newStripeAgainst(t, server.URL)
	session, err := s.CreateCheckoutSession(context.Background(), "price_123", "buyer@example.com", "user-abc", "pro", "https://app/success", "https://app/cancel")
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if session.URL == "" {
		t.Error("session URL empty")
	}
}

func TestStripeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "no such price"},
		})
	}))
	defer server.Close()

	s := newStripeAgainst(t, server.URL)
	_, err := s.CreateCheckoutSession(context.Background(), "price_bad", "e@x.com", "u", "pro", "s", "c")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Message != "no such price" {
		t.Errorf("message = %q", upstream.Message)
	}
}

func TestStripeWithoutSecretKey(t *testing.T) {
	s := NewStripeClient()
	_, err := s.ListProducts(context.Background())

	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
