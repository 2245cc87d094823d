package serverutils

import (
	"strconv"
	"time"

	"portfolio-chat-be/pkg/credential"

	"github.com/gofiber/fiber/v2"
)

func SetCredentialCookie(ctx *fiber.Ctx, token string, expiresAt time.Time, secure bool) {
	ctx.Cookie(&fiber.Cookie{
		Name:     credential.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func SetQuotaHeaders(ctx *fiber.Ctx, limit, used int, resetAt time.Time) {
	ctx.Set("X-Messages-Limit", strconv.Itoa(limit))
	ctx.Set("X-Messages-Used", strconv.Itoa(used))
	ctx.Set("X-Reset-At", resetAt.UTC().Format(time.RFC3339))
}
