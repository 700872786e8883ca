package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/uz-pay/uz_pay/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// maxRequestIDLen caps client-supplied identifiers before they reach the logs.
const maxRequestIDLen = 64

// RequestID assigns every request an identifier, echoes it in the response and
// threads it through the user context so service log lines carry it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(requestIDHeader, reqID)
		c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), reqID))
		return c.Next()
	}
}
