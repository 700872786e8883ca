package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

var (
	// ErrInsufficientFunds occurs when a debit exceeds the card balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCurrencyMismatch occurs when a posting currency differs from the card currency.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrCardNotFound indicates the referenced card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrBankNotFound indicates the referenced issuing bank does not exist.
	ErrBankNotFound = errors.New("bank not found")

	// ErrInvalidAmount is returned for non-positive amounts and amounts that
	// cannot be represented exactly at the target scale.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOwnershipConflict is returned when assigning a card already owned by another user.
	ErrOwnershipConflict = errors.New("card already owned by another user")

	// ErrCardNotOwned is returned by Charge when the card belongs to someone
	// other than the paying user.
	ErrCardNotOwned = errors.New("card not owned by user")

	// ErrCardOwnerRequired is returned by Charge for unassigned cards under OwnerRequired.
	ErrCardOwnerRequired = errors.New("card has no owner")

	// ErrDuplicateCardNumber indicates the card number is already registered.
	ErrDuplicateCardNumber = errors.New("card number already exists")

	// ErrStorage wraps faults of the underlying store that the ledger does not interpret.
	ErrStorage = errors.New("storage failure")
)

// DefaultCurrency is applied to new cards when neither the caller nor the
// backend options name one.
const DefaultCurrency = "UZS"

// NewCard captures the attributes required to register a card.
type NewCard struct {
	Number     string
	Type       card.Type
	BankID     string
	Expiration string
	Currency   string
}

// OwnerPolicy selects the ownership check a Charge performs atomically with its debit.
type OwnerPolicy int

const (
	// OwnerUnchecked skips the ownership check.
	OwnerUnchecked OwnerPolicy = iota
	// OwnerIfAssigned accepts unassigned cards and cards owned by Record.UserID.
	OwnerIfAssigned
	// OwnerRequired accepts only cards owned by Record.UserID.
	OwnerRequired
)

// Charge is a debit that must be journaled together with its transaction record.
// The backend assigns the record ID and creation timestamp at commit.
type Charge struct {
	CardID   string
	Amount   decimal.Decimal
	Currency string
	Owner    OwnerPolicy
	Record   transaction.Record
}

func checkOwner(policy OwnerPolicy, owner *string, userID string) error {
	if policy == OwnerUnchecked {
		return nil
	}
	if owner == nil || *owner == "" {
		if policy == OwnerRequired {
			return ErrCardOwnerRequired
		}
		return nil
	}
	if *owner != userID {
		return ErrCardNotOwned
	}
	return nil
}

// Ledger is the sole authority over card balances and the payment journal.
type Ledger interface {
	CreateBank(ctx context.Context, name string) (card.Bank, error)
	CreateCard(ctx context.Context, input NewCard) (card.Card, error)
	Card(ctx context.Context, cardID string) (card.Card, error)
	Debit(ctx context.Context, cardID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)
	Credit(ctx context.Context, cardID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)
	Charge(ctx context.Context, charge Charge) (transaction.Record, decimal.Decimal, error)
	Transactions(ctx context.Context, filter transaction.Filter) ([]transaction.Record, error)
	CardsOwnedBy(ctx context.Context, userID string) ([]card.Card, error)
	AssignOwner(ctx context.Context, cardID, userID string) error
	ReleaseOwner(ctx context.Context, cardID string) error
}

// Option configures a ledger backend.
type Option func(*options)

type options struct {
	defaultCurrency string
	now             func() time.Time
}

// WithDefaultCurrency overrides the currency applied to cards created without one.
func WithDefaultCurrency(currency string) Option {
	return func(o *options) {
		if currency != "" {
			o.defaultCurrency = currency
		}
	}
}

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		defaultCurrency: DefaultCurrency,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Accepted amounts keep their exponent and coefficient within these bounds.
// Rescaling an unbounded exponent goes through big.Int and costs time
// proportional to its magnitude.
const (
	maxAmountExponent  = 18
	maxCoefficientBits = 128
)

// ToScale returns d at the given number of fractional digits, or
// ErrInvalidAmount if that would drop non-zero digits or d is out of range.
func ToScale(d decimal.Decimal, places int32) (decimal.Decimal, error) {
	if exp := d.Exponent(); exp < -maxAmountExponent || exp > maxAmountExponent {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	truncated := d.Truncate(places)
	if !truncated.Equal(d) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return truncated, nil
}

func postingAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	scaled, err := ToScale(amount, card.BalanceScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !scaled.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return scaled, nil
}

// chargeAmount validates a payment amount, which must also fit the narrower
// transaction scale so the journaled amount equals the debited amount.
func chargeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if _, err := ToScale(amount, transaction.AmountScale); err != nil {
		return decimal.Decimal{}, err
	}
	return postingAmount(amount)
}

func validateNewCard(input NewCard, defaultCurrency string) (NewCard, error) {
	if err := card.ValidateNumber(input.Number); err != nil {
		return NewCard{}, err
	}
	if !input.Type.Valid() {
		return NewCard{}, card.ErrInvalidType
	}
	if _, err := card.ParseExpiration(input.Expiration); err != nil {
		return NewCard{}, err
	}
	if input.Currency == "" {
		input.Currency = defaultCurrency
	}
	input.Currency = strings.ToUpper(input.Currency)
	if len(input.Currency) != 3 {
		return NewCard{}, fmt.Errorf("currency must be a 3-letter code")
	}
	return input, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
