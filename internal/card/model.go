package card

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates the supported domestic card schemes.
type Type string

const (
	TypeHumo   Type = "HUMO"
	TypeUzcard Type = "UZCARD"
)

// BalanceScale is the number of fractional digits kept for card balances.
const BalanceScale = 4

// ErrInvalidType is returned for card types outside the supported schemes.
var ErrInvalidType = errors.New("invalid card type")

// ErrInvalidExpiration is returned for expiration markers not shaped MM/YY.
var ErrInvalidExpiration = errors.New("invalid expiration, expected MM/YY")

// Valid reports whether t is a known scheme.
func (t Type) Valid() bool {
	switch t {
	case TypeHumo, TypeUzcard:
		return true
	default:
		return false
	}
}

// Bank is the issuing bank referenced by every card.
type Bank struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Card is a prepaid instrument. OwnerID is nil while the card is unassigned.
type Card struct {
	ID         string
	Number     string
	Type       Type
	BankID     string
	Expiration string
	Currency   string
	Balance    decimal.Decimal
	OwnerID    *string
	CreatedAt  time.Time
}

// HasOwner reports whether the card is assigned to a user.
func (c Card) HasOwner() bool {
	return c.OwnerID != nil && *c.OwnerID != ""
}

// OwnedBy reports whether the card is assigned to userID.
func (c Card) OwnedBy(userID string) bool {
	return c.HasOwner() && *c.OwnerID == userID
}

// Expiration is a parsed MM/YY marker.
type Expiration struct {
	Month int
	Year  int
}

// String renders the marker back in MM/YY form.
func (e Expiration) String() string {
	return fmt.Sprintf("%02d/%02d", e.Month, e.Year%100)
}

// ParseExpiration parses an MM/YY marker. Years are interpreted in the 2000s.
func ParseExpiration(value string) (Expiration, error) {
	if len(value) != 5 || value[2] != '/' {
		return Expiration{}, ErrInvalidExpiration
	}
	month, err := strconv.Atoi(value[:2])
	if err != nil || month < 1 || month > 12 {
		return Expiration{}, ErrInvalidExpiration
	}
	for _, r := range value[3:] {
		if r < '0' || r > '9' {
			return Expiration{}, ErrInvalidExpiration
		}
	}
	year, _ := strconv.Atoi(value[3:])
	return Expiration{Month: month, Year: 2000 + year}, nil
}
