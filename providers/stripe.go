package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const ProviderStripe = "stripe"

// stripeSignatureTolerance bounds how old a webhook timestamp may be.
const stripeSignatureTolerance = 5 * time.Minute

// StripeClient is a thin REST client for the parts of the Stripe API the
// billing routes proxy: catalog listing, checkout sessions and webhook
// verification.
type StripeClient struct {
	secretKey     string
	webhookSecret string
	apiBase       string
	client        *http.Client
}

// StripeProduct represents a product in the Stripe catalog
type StripeProduct struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Active      bool              `json:"active"`
	Metadata    map[string]string `json:"metadata"`
}

// StripePrice represents a price attached to a product
type StripePrice struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
	Recurring  *struct {
		Interval string `json:"interval"`
	} `json:"recurring"`
}

// CheckoutSession is a created Stripe Checkout session
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WebhookEvent is a verified event received from Stripe
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object map[string]interface{} `json:"object"`
	} `json:"data"`
}

type stripeList[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewStripeClient creates a new instance of the Stripe client
func NewStripeClient() *StripeClient {
	return &StripeClient{
		apiBase: "https://api.stripe.com/v1",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Initialize sets up the client with credentials and configuration
func (s *StripeClient) Initialize(config map[string]string) error {
	s.secretKey = config["secret_key"]
	s.webhookSecret = config["webhook_secret"]
	if base, ok := config["api_base"]; ok && base != "" {
		s.apiBase = base
	}
	return nil
}

// Name returns the name of the provider
func (s *StripeClient) Name() string {
	return ProviderStripe
}

func (s *StripeClient) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	if s.secretKey == "" {
		return &ConfigError{Provider: ProviderStripe, Hint: "set STRIPE_SECRET_KEY"}
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var e stripeError
		msg := "request failed"
		if json.Unmarshal(respBody, &e) == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return &UpstreamError{Provider: ProviderStripe, Status: resp.StatusCode, Message: msg}
	}

	return json.Unmarshal(respBody, out)
}

// ListProducts returns active products in the catalog
func (s *StripeClient) ListProducts(ctx context.Context) ([]StripeProduct, error) {
	var list stripeList[StripeProduct]
	if err := s.do(ctx, http.MethodGet, "/products?active=true&limit=100", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// ListPrices returns active prices in the catalog
func (s *StripeClient) ListPrices(ctx context.Context) ([]StripePrice, error) {
	var list stripeList[StripePrice]
	if err := s.do(ctx, http.MethodGet, "/prices?active=true&limit=100", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CreateCheckoutSession creates a hosted checkout session for a price. The
// plan tier rides in session metadata so the webhook can apply it without a
// second catalog lookup.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, priceID, customerEmail, userID, planTier, successURL, cancelURL string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("customer_email", customerEmail)
	form.Set("client_reference_id", userID)
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	if planTier != "" {
		form.Set("metadata[plan]", planTier)
	}

	var session CheckoutSession
	if err := s.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyWebhook checks the Stripe-Signature header against the payload and
// returns the parsed event. Signature scheme: HMAC-SHA256 over
// "<timestamp>.<payload>" with the webhook secret.
func (s *StripeClient) VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, &ConfigError{Provider: ProviderStripe, Hint: "set STRIPE_WEBHOOK_SECRET"}
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return nil, errors.New("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, errors.New("malformed signature timestamp")
	}
	age := time.Since(time.Unix(ts, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return nil, errors.New("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	fmt.Fprintf(mac, "%s.%s", timestamp, payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errors.New("signature mismatch")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
