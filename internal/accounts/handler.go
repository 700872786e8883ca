package accounts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

const maxJournalPage = 100

// Handler exposes card listing for users and card administration.
type Handler struct {
	catalog *Catalog
	ledger  ledger.Ledger
}

// NewHandler constructs an accounts handler.
func NewHandler(catalog *Catalog, led ledger.Ledger) *Handler {
	return &Handler{catalog: catalog, ledger: led}
}

// MyCards lists the caller's cards.
func (h *Handler) MyCards(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	cards, err := h.catalog.Cards(c.UserContext(), uid)
	if err != nil {
		return toHTTPError(err)
	}
	out := make([]CardResponse, 0, len(cards))
	for _, owned := range cards {
		out = append(out, toCardResponse(owned))
	}
	return c.JSON(fiber.Map{"cards": out})
}

// CardTransactions lists journaled payments of a card owned by the caller.
func (h *Handler) CardTransactions(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	cardID := c.Params("cardId")

	owned, err := h.catalog.IsOwnedBy(c.UserContext(), cardID, uid)
	if err != nil {
		return toHTTPError(err)
	}
	if !owned {
		return fiber.NewError(http.StatusForbidden, "card not owned by user")
	}

	limit := maxJournalPage
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fiber.NewError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if n < limit {
			limit = n
		}
	}

	records, err := h.ledger.Transactions(c.UserContext(), transaction.Filter{CardID: cardID, Limit: limit})
	if err != nil {
		return toHTTPError(err)
	}
	out := make([]transaction.Response, 0, len(records))
	for _, r := range records {
		out = append(out, transaction.ToResponse(r))
	}
	return c.JSON(fiber.Map{"transactions": out})
}

// CreateBank registers an issuing bank.
func (h *Handler) CreateBank(c *fiber.Ctx) error {
	var req createBankRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name is required")
	}
	bank, err := h.ledger.CreateBank(c.UserContext(), req.Name)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         bank.ID,
		"name":       bank.Name,
		"created_at": bank.CreatedAt,
	})
}

// CreateCard registers a card with a zero balance.
func (h *Handler) CreateCard(c *fiber.Ctx) error {
	var req createCardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	created, err := h.ledger.CreateCard(c.UserContext(), ledger.NewCard{
		Number:     req.Number,
		Type:       req.Type,
		BankID:     req.BankID,
		Expiration: req.Expiration,
		Currency:   req.Currency,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toCardResponse(created))
}

// AssignOwner attaches the card to a user.
func (h *Handler) AssignOwner(c *fiber.Ctx) error {
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id is required")
	}
	if err := h.catalog.AssignCard(c.UserContext(), c.Params("cardId"), req.UserID); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ReleaseOwner detaches the card from its owner.
func (h *Handler) ReleaseOwner(c *fiber.Ctx) error {
	if err := h.catalog.ReleaseCard(c.UserContext(), c.Params("cardId")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, card.ErrInvalidFormat), errors.Is(err, card.ErrInvalidType), errors.Is(err, card.ErrInvalidExpiration):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrCardNotFound), errors.Is(err, ledger.ErrBankNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrOwnershipConflict), errors.Is(err, ledger.ErrDuplicateCardNumber):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrStorage):
		return fiber.NewError(http.StatusInternalServerError, "storage unavailable")
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
