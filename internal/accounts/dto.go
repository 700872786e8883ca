package accounts

import (
	"time"

	"github.com/uz-pay/uz_pay/internal/card"
)

// CardResponse is the JSON view of a card. The number is always masked.
type CardResponse struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Type       card.Type `json:"type"`
	BankID     string    `json:"bank_id"`
	Expiration string    `json:"expiration_date"`
	Currency   string    `json:"currency"`
	Balance    string    `json:"balance"`
	OwnerID    *string   `json:"owner_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCardResponse(c card.Card) CardResponse {
	return CardResponse{
		ID:         c.ID,
		Number:     card.MaskNumber(c.Number),
		Type:       c.Type,
		BankID:     c.BankID,
		Expiration: c.Expiration,
		Currency:   c.Currency,
		Balance:    c.Balance.StringFixed(card.BalanceScale),
		OwnerID:    c.OwnerID,
		CreatedAt:  c.CreatedAt,
	}
}

type createBankRequest struct {
	Name string `json:"name"`
}

type createCardRequest struct {
	Number     string    `json:"number"`
	Type       card.Type `json:"type"`
	BankID     string    `json:"bank_id"`
	Expiration string    `json:"expiration_date"`
	Currency   string    `json:"currency"`
}

type assignRequest struct {
	UserID string `json:"user_id"`
}
