package serverutils

import (
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/blake2b"
)

// ClientIP is the first X-Forwarded-For entry, or the peer address.
func ClientIP(ctx *fiber.Ctx) string {
	if forwarded := ctx.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := ctx.Context().RemoteIP(); ip != nil {
		return ip.String()
	}
	return "unknown"
}

// HashIP is used wherever an identity is logged or published.
func HashIP(ip string) string {
	sum := blake2b.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])[:16]
}
