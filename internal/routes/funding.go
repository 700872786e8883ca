package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uz-pay/uz_pay/internal/funding"
)

// RegisterFundingRoutes wires the card top-up endpoint.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/cards/:cardId/topup", h.TopUp)
}
