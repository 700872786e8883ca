package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDHeader carries the caller identity asserted by the upstream identity gateway.
const UserIDHeader = "X-User-ID"

// UserIdentity copies the gateway-asserted user identifier into c.Locals("user_id").
func UserIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := strings.TrimSpace(c.Get(UserIDHeader))
		if uid == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing user identity")
		}
		c.Locals("user_id", uid)
		return c.Next()
	}
}
