package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uz-pay/uz_pay/internal/payments"
)

// RegisterPaymentRoutes wires payment endpoints behind the identity and rate limit handlers.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, identity, limiter fiber.Handler) {
	r.Post("/payments/phone", identity, limiter, h.PhonePayment)
	r.Post("/payments/card", identity, limiter, h.CardPayment)
}
