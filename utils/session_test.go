package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newCookieTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		if err := WriteSession(c, SessionData{UserID: "abc", Email: "cookie@example.com"}); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		ClearSession(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestSealOpenRoundTrip(t *testing.T) {
	data := SessionData{
		UserID:        "64f1b2a3c4d5e6f7a8b9c0d1",
		Email:         "user@example.com",
		Name:          "Test User",
		Plan:          "pro",
		EmailVerified: true,
	}

	sealed, err := SealSession(data)
	if err != nil {
		t.Fatalf("SealSession: %v", err)
	}

	got, err := OpenSession(sealed)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if got != data {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, data)
	}
}

func TestOpenSessionPreservesAdminFlag(t *testing.T) {
	sealed, err := SealSession(SessionData{UserID: "admin", Email: "admin@example.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("SealSession: %v", err)
	}
	got, err := OpenSession(sealed)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if !got.IsAdmin {
		t.Error("IsAdmin flag lost in round trip")
	}
}

func TestOpenSessionRejectsTampering(t *testing.T) {
	sealed, err := SealSession(SessionData{UserID: "abc", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("SealSession: %v", err)
	}

	segments := strings.Split(sealed, ".")
	if len(segments) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(segments))
	}

	// Tamper inside each segment.
	var offset int
	for _, seg := range segments {
		pos := offset + len(seg)/2
		tampered := []byte(sealed)
		if tampered[pos] == 'A' {
			tampered[pos] = 'Q'
		} else {
			tampered[pos] = 'A'
		}
		if string(tampered) != sealed {
			if _, err := OpenSession(string(tampered)); err == nil {
				t.Errorf("tampered token at byte %d accepted", pos)
			}
		}
		offset += len(seg) + 1
	}
}

func TestOpenSessionRejectsWrongSecret(t *testing.T) {
	sealed, err := SealSession(SessionData{UserID: "abc", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("SealSession: %v", err)
	}

	t.Setenv("SESSION_SECRET", "a-completely-different-secret")
	if _, err := OpenSession(sealed); err == nil {
		t.Error("token sealed under another secret accepted")
	}
}

func TestOpenSessionRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := OpenSession(input); err == nil {
			t.Errorf("garbage input %q accepted", input)
		}
	}
}

func TestWriteSessionSetsHardenedCookie(t *testing.T) {
	app := newCookieTestApp(t)

	req := httptest.NewRequest("GET", "/set", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(setCookie, SessionCookie+"=") {
		t.Fatalf("session cookie not set: %q", setCookie)
	}
	if !strings.Contains(setCookie, "HttpOnly") {
		t.Error("cookie missing HttpOnly")
	}
	if !strings.Contains(setCookie, "SameSite=Lax") {
		t.Error("cookie missing SameSite=Lax")
	}

	// The cookie value must verify as a sealed session.
	value := cookieValue(setCookie, SessionCookie)
	if value == "" {
		t.Fatal("empty cookie value")
	}
	data, err := OpenSession(value)
	if err != nil {
		t.Fatalf("cookie did not contain a valid sealed session: %v", err)
	}
	if data.Email != "cookie@example.com" {
		t.Errorf("unexpected email in sealed cookie: %q", data.Email)
	}
}

func TestClearSessionExpiresCookie(t *testing.T) {
	app := newCookieTestApp(t)

	req := httptest.NewRequest("GET", "/clear", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(setCookie, SessionCookie+"=") {
		t.Fatalf("session cookie not cleared: %q", setCookie)
	}
	if !strings.Contains(setCookie, "Expires=Thu, 01 Jan 1970") {
		t.Errorf("cleared cookie not expired: %q", setCookie)
	}
}

func cookieValue(setCookie, name string) string {
	for _, part := range strings.Split(setCookie, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, name+"=") {
			return strings.TrimPrefix(part, name+"=")
		}
	}
	return ""
}
