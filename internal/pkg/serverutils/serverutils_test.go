package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(ClientIP(c)) })

	tests := map[string]struct {
		forwarded string
		want      string
	}{
		"first forwarded entry": {"203.0.113.7, 10.0.0.1", "203.0.113.7"},
		"single entry":          {" 198.51.100.2 ", "198.51.100.2"},
		"no header":             {"", "0.0.0.0"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tc.forwarded != "" {
				req.Header.Set(fiber.HeaderXForwardedFor, tc.forwarded)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.want, string(body))
		})
	}
}

func TestHashIP(t *testing.T) {
	h := HashIP("203.0.113.7")
	assert.Len(t, h, 16)
	assert.Equal(t, h, HashIP("203.0.113.7"))
	assert.NotEqual(t, h, HashIP("203.0.113.8"))
}

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=3"`
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(sample{Email: "a@b.co", Name: "Ada"}))

	err := ValidateRequest(sample{Email: "nope", Name: "Adelaide"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"email": "email", "name": "max=3"}, verr.Fields)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	reset := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/limit", func(c *fiber.Ctx) error {
		return &dto.LimitExceededError{Limit: 10, Used: 10, ResetAt: reset}
	})
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusForbidden, "nope") })
	app.Get("/validation", func(c *fiber.Ctx) error { return ValidateRequest(sample{}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: password authentication failed") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/limit", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-Messages-Limit"))
	assert.Equal(t, "10", resp.Header.Get("X-Messages-Used"))
	assert.Equal(t, "2026-03-05T00:00:00Z", resp.Header.Get("X-Reset-At"))
	var body dto.LimitExceededResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, dto.LimitExceededResponse{Type: "rate_limit", Limit: 10, Used: 10, ResetAt: "2026-03-05T00:00:00Z"}, body)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/validation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "password")
}

func adminToken(t *testing.T, secret, role string, exp time.Time, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "ops", "exp": exp.Unix()}
	if role != "" {
		claims["role"] = role
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAdminJwtMiddleware(t *testing.T) {
	const secret = "admin-secret"
	app := fiber.New()
	app.Post("/reload", AdminJwtMiddleware(secret), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	future := time.Now().Add(time.Hour)
	tests := map[string]struct {
		header string
		want   int
	}{
		"admin":          {"Bearer " + adminToken(t, secret, "admin", future, jwt.SigningMethodHS256), fiber.StatusNoContent},
		"missing header": {"", fiber.StatusUnauthorized},
		"not bearer":     {"Basic abc", fiber.StatusUnauthorized},
		"wrong secret":   {"Bearer " + adminToken(t, "other", "admin", future, jwt.SigningMethodHS256), fiber.StatusUnauthorized},
		"expired":        {"Bearer " + adminToken(t, secret, "admin", time.Now().Add(-time.Hour), jwt.SigningMethodHS256), fiber.StatusUnauthorized},
		"wrong alg":      {"Bearer " + adminToken(t, secret, "admin", future, jwt.SigningMethodHS384), fiber.StatusUnauthorized},
		"user role":      {"Bearer " + adminToken(t, secret, "user", future, jwt.SigningMethodHS256), fiber.StatusForbidden},
		"no role":        {"Bearer " + adminToken(t, secret, "", future, jwt.SigningMethodHS256), fiber.StatusForbidden},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/reload", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
