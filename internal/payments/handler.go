package payments

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/merchant"
	"github.com/uz-pay/uz_pay/internal/notification"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

// Handler exposes payment endpoints.
type Handler struct {
	service  *Service
	notifier notification.Notifier
}

// NewHandler constructs a payment handler. The notifier is optional.
func NewHandler(service *Service, notifier notification.Notifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

type paymentRequest struct {
	CardID      string          `json:"card_id"`
	MerchantID  string          `json:"merchant_id"`
	Amount      decimal.Decimal `json:"amount"`
	DeviceID    string          `json:"device_id"`
	PhoneNumber string          `json:"phone_number"`
	CardNumber  string          `json:"card_number"`
}

// PhonePayment records a payment initiated from a phone number.
func (h *Handler) PhonePayment(c *fiber.Ctx) error {
	return h.authorize(c, transaction.ChannelPhone)
}

// CardPayment records a payment initiated with a card number.
func (h *Handler) CardPayment(c *fiber.Ctx) error {
	return h.authorize(c, transaction.ChannelCard)
}

func (h *Handler) authorize(c *fiber.Ctx, channel transaction.Channel) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	identifier := req.PhoneNumber
	if channel == transaction.ChannelCard {
		identifier = req.CardNumber
	}

	record, err := h.service.Authorize(c.UserContext(), Request{
		Channel:           channel,
		UserID:            uid,
		CardID:            req.CardID,
		MerchantID:        req.MerchantID,
		Amount:            req.Amount,
		DeviceID:          req.DeviceID,
		ChannelIdentifier: identifier,
	})
	if err != nil {
		return toHTTPError(err)
	}

	if h.notifier != nil {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        notification.KindPaymentAuthorized,
			Destination: record.UserID,
			Body:        fmt.Sprintf("Paid %s to merchant %s", record.Amount.StringFixed(transaction.AmountScale), record.MerchantID),
			Reference:   record.ID,
		})
	}

	return c.Status(http.StatusCreated).JSON(transaction.ToResponse(record))
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidChannel), errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserRequired):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrCardNotOwnedByUser), errors.Is(err, ErrCardOwnerRequired):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrCardNotFound), errors.Is(err, merchant.ErrMerchantNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrCurrencyMismatch):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "payment could not be recorded")
	}
}
