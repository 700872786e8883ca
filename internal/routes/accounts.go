package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uz-pay/uz_pay/internal/accounts"
	"github.com/uz-pay/uz_pay/internal/merchant"
)

// RegisterAccountRoutes wires the caller's card views.
func RegisterAccountRoutes(r fiber.Router, h *accounts.Handler, identity fiber.Handler) {
	r.Get("/cards", identity, h.MyCards)
	r.Get("/cards/:cardId/transactions", identity, h.CardTransactions)
}

// RegisterAdminRoutes wires card and merchant administration.
func RegisterAdminRoutes(r fiber.Router, cards *accounts.Handler, merchants *merchant.Handler) {
	r.Post("/banks", cards.CreateBank)
	r.Post("/cards", cards.CreateCard)
	r.Put("/cards/:cardId/owner", cards.AssignOwner)
	r.Delete("/cards/:cardId/owner", cards.ReleaseOwner)
	r.Post("/merchant-categories", merchants.CreateCategory)
	r.Post("/merchants", merchants.CreateMerchant)
}
