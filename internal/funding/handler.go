package funding

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/notification"
)

// Handler exposes the card top-up endpoint.
type Handler struct {
	service  *Service
	notifier notification.Notifier
}

// NewHandler constructs a funding handler. The notifier is optional.
func NewHandler(service *Service, notifier notification.Notifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

// TopUp credits the card named in the path.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	var req TopUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.TopUp(c.UserContext(), TopUpInput{
		CardID:   c.Params("cardId"),
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrCardNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ledger.ErrCurrencyMismatch):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "top-up could not be recorded")
		}
	}

	if h.notifier != nil && result.OwnerID != "" {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        notification.KindCardTopUp,
			Destination: result.OwnerID,
			Body:        fmt.Sprintf("Card credited with %s %s", req.Amount.String(), result.Currency),
			Reference:   result.AcquirerReference,
		})
	}

	return c.Status(http.StatusCreated).JSON(toResponse(result))
}
