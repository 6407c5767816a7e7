package utils

import (
	"errors"
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Cookie names. SessionCookie carries the sealed session; the legacy
// cookies predate it and are read by the auth middleware as a migration
// shim, never written.
const (
	SessionCookie         = "saintsal_session"
	LegacyAuthCookie      = "saintsal_auth"
	LegacyUserEmailCookie = "saintsal_user_email"
)

// DefaultSessionSecret is the development fallback. Running production with
// it is a fatal misconfiguration, enforced at startup.
const DefaultSessionSecret = "saintsal-dev-secret-change-me"

// SessionMaxAge is the lifetime of a session cookie.
const SessionMaxAge = 30 * 24 * time.Hour

// SessionData is the full client-held session state. There is no
// server-side session table; the signed cookie is the bearer credential.
type SessionData struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Plan          string `json:"plan"`
	EmailVerified bool   `json:"emailVerified"`
	IsAdmin       bool   `json:"isAdmin"`
}

type sessionClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Plan          string `json:"plan"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// SessionSecret returns the signing secret for session cookies.
func SessionSecret() []byte {
	return []byte(config.GetEnv("SESSION_SECRET", DefaultSessionSecret))
}

// SealSession signs session data into a compact token.
func SealSession(data SessionData) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email:         data.Email,
		Name:          data.Name,
		Plan:          data.Plan,
		EmailVerified: data.EmailVerified,
		IsAdmin:       data.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   data.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionMaxAge)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(SessionSecret())
}

// OpenSession verifies a sealed token and returns the session data. Any
// tampering, expiry or wrong-secret failure yields an error; callers treat
// that as an empty session.
func OpenSession(sealed string) (SessionData, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(sealed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return SessionSecret(), nil
	})
	if err != nil || !token.Valid {
		return SessionData{}, errors.New("invalid session")
	}
	return SessionData{
		UserID:        claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Plan:          claims.Plan,
		EmailVerified: claims.EmailVerified,
		IsAdmin:       claims.IsAdmin,
	}, nil
}

// WriteSession seals the session data and sets the session cookie.
func WriteSession(c *fiber.Ctx, data SessionData) error {
	sealed, err := SealSession(data)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    sealed,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// ReadSession reads and verifies the session cookie. A missing or malformed
// cookie returns an empty session and false.
func ReadSession(c *fiber.Ctx) (SessionData, bool) {
	sealed := c.Cookies(SessionCookie)
	if sealed == "" {
		return SessionData{}, false
	}
	data, err := OpenSession(sealed)
	if err != nil {
		return SessionData{}, false
	}
	return data, true
}

// ClearSession expires the session cookie.
func ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
