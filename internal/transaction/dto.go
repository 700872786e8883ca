package transaction

import "time"

// Response is the JSON shape of a record returned by HTTP handlers.
type Response struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CardID      string    `json:"card_id"`
	MerchantID  string    `json:"merchant_id"`
	Amount      string    `json:"amount"`
	DeviceID    string    `json:"device_id"`
	Channel     Channel   `json:"channel"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CardNumber  string    `json:"card_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse renders r for the wire.
func ToResponse(r Record) Response {
	resp := Response{
		ID:         r.ID,
		UserID:     r.UserID,
		CardID:     r.CardID,
		MerchantID: r.MerchantID,
		Amount:     r.Amount.StringFixed(AmountScale),
		DeviceID:   r.DeviceID,
		Channel:    r.Channel(),
		CreatedAt:  r.CreatedAt,
	}
	switch d := r.Details.(type) {
	case PhonePayment:
		resp.PhoneNumber = d.PhoneNumber
	case CardPayment:
		resp.CardNumber = d.CardNumber
	}
	return resp
}
