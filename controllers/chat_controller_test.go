package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/models"
	"github.com/SaintVisionAi/saintsal-chat-sub001/providers"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// newChatTestApp serves the chat handler behind locals that mimic an admin
// session, which skips metering.
func newChatTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/chat", func(c *fiber.Ctx) error {
		c.Locals("user_id", "admin")
		c.Locals("is_admin", true)
		return c.Next()
	}, Chat)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestChatRequiresMessages(t *testing.T) {
	InitProviders()
	resp := postJSON(t, newChatTestApp(), "/api/chat", `{"messages":[]}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChatUnknownProvider(t *testing.T) {
	InitProviders()
	resp := postJSON(t, newChatTestApp(), "/api/chat",
		`{"provider":"nonsense","messages":[{"role":"user","content":"hi"}]}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChatUnconfiguredProviderGives503(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	InitProviders()

	resp := postJSON(t, newChatTestApp(), "/api/chat",
		`{"messages":[{"role":"user","content":"hi"}]}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// Operators get told which variable to set.
	if !strings.Contains(body.Error, "OPENAI_API_KEY") {
		t.Errorf("error lacks setup hint: %q", body.Error)
	}
}

func TestCompareRequiresPrompt(t *testing.T) {
	app := fiber.New()
	app.Post("/api/chat/compare", Compare)

	resp := postJSON(t, app, "/api/chat/compare", `{"prompt":""}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestComparePartialResults(t *testing.T) {
	// Neither provider has a key, so both sides report errors rather than
	// the whole call failing.
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	InitProviders()

	app := fiber.New()
	app.Post("/api/chat/compare", Compare)

	resp := postJSON(t, app, "/api/chat/compare", `{"prompt":"compare this"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success bool                       `json:"success"`
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success {
		t.Error("success = false")
	}
	for _, name := range []string{"openai", "anthropic"} {
		if _, ok := body.Results[name]; !ok {
			t.Errorf("missing result for %s", name)
		}
	}
}

func TestChatAndPlaygroundShareFreePlanCap(t *testing.T) {
	now := time.Now()
	capped := models.User{
		ID:           primitive.NewObjectID(),
		Email:        "capped@example.com",
		Name:         "Capped",
		Plan:         models.PlanFree,
		MessageCount: models.FreePlanMessageLimit,
		UsageResetAt: now.AddDate(0, 1, 0),
	}
	users := &fakeCollection{findOne: func(interface{}) *mongo.SingleResult {
		return resultFound(t, capped)
	}}
	installFakeStore(t, map[string]*fakeCollection{"users": users})

	routes := []struct {
		path    string
		handler fiber.Handler
	}{
		{"/api/chat", Chat},
		{"/api/playground", Playground},
	}
	for _, route := range routes {
		app := fiber.New()
		app.Post(route.path, withUserLocals(capped.ID.Hex(), capped.Email), route.handler)

		resp := postJSON(t, app, route.path, `{"messages":[{"role":"user","content":"hi"}]}`)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s status = %d, want 403", route.path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestPlaygroundRecordsUsageForFreeUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model":"gpt-4o","choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`)
	}))
	defer server.Close()

	openai := providers.NewOpenAIProvider()
	if err := openai.Initialize(map[string]string{"api_key": "test-key", "api_base": server.URL}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	providerRegistry.Register(openai)
	providerRegistry.SetDefaultChat(providers.ProviderOpenAI)
	t.Cleanup(InitProviders)

	now := time.Now()
	free := models.User{
		ID:           primitive.NewObjectID(),
		Email:        "free@example.com",
		Name:         "Free",
		Plan:         models.PlanFree,
		MessageCount: 3,
		UsageResetAt: now.AddDate(0, 1, 0),
	}

	var usageUpdate bson.M
	users := &fakeCollection{
		findOne: func(interface{}) *mongo.SingleResult {
			return resultFound(t, free)
		},
		updateOne: func(filter, update interface{}) (*mongo.UpdateResult, error) {
			if u, ok := update.(bson.M); ok {
				usageUpdate = u
			}
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	}
	installFakeStore(t, map[string]*fakeCollection{"users": users})

	app := fiber.New()
	app.Post("/api/playground", withUserLocals(free.ID.Hex(), free.Email), Playground)

	resp := postJSON(t, app, "/api/playground",
		`{"messages":[{"role":"user","content":"hi"}],"system":"be brief"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if usageUpdate == nil {
		t.Fatal("no usage write recorded")
	}
	inc, ok := usageUpdate["$inc"].(bson.M)
	if !ok || inc["message_count"] != 1 {
		t.Errorf("usage update = %v", usageUpdate)
	}
}

func TestTextToSpeechRequiresText(t *testing.T) {
	InitProviders()
	app := fiber.New()
	app.Post("/api/speech/tts", TextToSpeech)

	resp := postJSON(t, app, "/api/speech/tts", `{"text":""}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
