package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// TokenHeader is the alternative header carrying the API token.
const TokenHeader = "X-API-Token"

// TokenAuth guards endpoints that trigger search lookups or change stored
// state with a shared API token.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a token middleware. An empty token disables the check.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// Enabled reports whether a token is required.
func (m *TokenAuth) Enabled() bool {
	return m.token != ""
}

// RequireToken rejects requests without the configured token, read from a
// Bearer Authorization header or X-API-Token.
func (m *TokenAuth) RequireToken(c fiber.Ctx) error {
	if !m.Enabled() {
		return c.Next()
	}

	got := requestToken(c)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(m.token)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "invalid or missing API token",
		})
	}
	return c.Next()
}

func requestToken(c fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		scheme, value, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	return strings.TrimSpace(c.Get(TokenHeader))
}
