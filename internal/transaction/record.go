package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits a payment amount may carry.
const AmountScale = 2

// Channel identifies how a payment was initiated.
type Channel string

const (
	ChannelPhone Channel = "phone"
	ChannelCard  Channel = "card"
)

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	return c == ChannelPhone || c == ChannelCard
}

// Details is the channel-specific part of a record. It is implemented only
// by PhonePayment and CardPayment.
type Details interface {
	Channel() Channel
	Identifier() string
	isDetails()
}

// PhonePayment carries the phone number a payment was initiated from.
type PhonePayment struct {
	PhoneNumber string
}

func (PhonePayment) Channel() Channel     { return ChannelPhone }
func (p PhonePayment) Identifier() string { return p.PhoneNumber }
func (PhonePayment) isDetails()           {}

// CardPayment carries the card number as it was presented at payment time.
// It is a snapshot and may be masked or padded.
type CardPayment struct {
	CardNumber string
}

func (CardPayment) Channel() Channel     { return ChannelCard }
func (p CardPayment) Identifier() string { return p.CardNumber }
func (CardPayment) isDetails()           {}

// NewDetails builds the payload for channel from its identifier.
func NewDetails(channel Channel, identifier string) (Details, bool) {
	switch channel {
	case ChannelPhone:
		return PhonePayment{PhoneNumber: identifier}, true
	case ChannelCard:
		return CardPayment{CardNumber: identifier}, true
	default:
		return nil, false
	}
}

// Record is an immutable payment entry written together with its card debit.
type Record struct {
	ID         string
	UserID     string
	CardID     string
	MerchantID string
	Amount     decimal.Decimal
	DeviceID   string
	CreatedAt  time.Time
	Details    Details
}

// Channel returns the channel tag of the record.
func (r Record) Channel() Channel {
	if r.Details == nil {
		return ""
	}
	return r.Details.Channel()
}

// Filter narrows journal reads. Empty fields are ignored.
type Filter struct {
	CardID string
	UserID string
	Limit  int
}

// Matches reports whether r satisfies the filter's field constraints.
func (f Filter) Matches(r Record) bool {
	if f.CardID != "" && r.CardID != f.CardID {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	return true
}
