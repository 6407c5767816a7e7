package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func stripeSign(secret string, ts int64, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, payload, signature string) *http.Response {
	t.Helper()
	app := fiber.New()
	app.Post("/api/billing/webhook", StripeWebhook)

	req := httptest.NewRequest("POST", "/api/billing/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_handler")
	InitProviders()

	payload := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"client_reference_id":"abc","metadata":{"plan":"pro"}}}}`

	resp := postWebhook(t, payload, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing signature: status = %d, want 400", resp.StatusCode)
	}

	resp = postWebhook(t, payload, stripeSign("whsec_wrong", time.Now().Unix(), payload))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong secret: status = %d, want 400", resp.StatusCode)
	}
}

func TestStripeWebhookIgnoresOtherEvents(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_handler")
	InitProviders()

	payload := `{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`
	resp := postWebhook(t, payload, stripeSign("whsec_handler", time.Now().Unix(), payload))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStripeWebhookSkipsUnusableCheckout(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_handler")
	InitProviders()

	// A completed checkout without a client reference is acknowledged but
	// never applied.
	payload := `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"metadata":{"plan":"pro"}}}}`
	resp := postWebhook(t, payload, stripeSign("whsec_handler", time.Now().Unix(), payload))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
