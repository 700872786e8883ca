package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AdminTokenHeader carries the administrative token.
const AdminTokenHeader = "X-Admin-Token"

// AdminAuth admits requests whose token matches the bcrypt hash. An empty
// hash disables the admin surface entirely.
func AdminAuth(tokenHash string) fiber.Handler {
	hash := []byte(tokenHash)
	return func(c *fiber.Ctx) error {
		if len(hash) == 0 {
			return fiber.NewError(http.StatusForbidden, "admin access disabled")
		}
		token := c.Get(AdminTokenHeader)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing admin token")
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin token")
		}
		return c.Next()
	}
}
