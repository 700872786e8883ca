package funding

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/card"
)

// TopUpRequest is the admin payload for crediting a card.
type TopUpRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// TopUpResponse represents the API response for a completed top-up.
type TopUpResponse struct {
	CardID            string    `json:"card_id"`
	Balance           string    `json:"balance"`
	Currency          string    `json:"currency"`
	AcquirerReference string    `json:"acquirer_reference"`
	CompletedAt       time.Time `json:"completed_at"`
}

func toResponse(r TopUpResult) TopUpResponse {
	return TopUpResponse{
		CardID:            r.CardID,
		Balance:           r.Balance.StringFixed(card.BalanceScale),
		Currency:          r.Currency,
		AcquirerReference: r.AcquirerReference,
		CompletedAt:       r.CompletedAt,
	}
}
