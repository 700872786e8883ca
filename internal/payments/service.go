package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/accounts"
	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/logging"
	"github.com/uz-pay/uz_pay/internal/merchant"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

var (
	// ErrCardNotOwnedByUser indicates the card is assigned to a different user.
	ErrCardNotOwnedByUser = ledger.ErrCardNotOwned

	// ErrCardOwnerRequired is returned for unassigned cards when owner enforcement is enabled.
	ErrCardOwnerRequired = ledger.ErrCardOwnerRequired

	// ErrInvalidChannel indicates an unknown channel or a missing channel identifier.
	ErrInvalidChannel = errors.New("invalid payment channel")

	// ErrUserRequired indicates the request carries no user identity.
	ErrUserRequired = errors.New("user id is required")
)

// maxAmount bounds payment amounts to ten digits with two of them fractional.
var maxAmount = decimal.New(1, 8)

// Request describes a payment to authorize against a card.
type Request struct {
	Channel           transaction.Channel
	UserID            string
	CardID            string
	MerchantID        string
	Amount            decimal.Decimal
	DeviceID          string
	ChannelIdentifier string
}

// Options tunes authorization policy.
type Options struct {
	// RequireOwner rejects payments on cards that have no recorded owner.
	RequireOwner bool
}

// Service authorizes payments and records them on the ledger.
type Service struct {
	ledger    ledger.Ledger
	accounts  *accounts.Catalog
	merchants *merchant.Catalog
	opts      Options
	logger    *slog.Logger
}

// NewService constructs a payment authorizer.
func NewService(led ledger.Ledger, accountCatalog *accounts.Catalog, merchants *merchant.Catalog, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: led, accounts: accountCatalog, merchants: merchants, opts: opts, logger: logger}
}

// Authorize validates the request, debits the card and journals the
// transaction record. On any error nothing has been mutated. Requests are
// not deduplicated: resubmitting produces a second debit.
func (s *Service) Authorize(ctx context.Context, req Request) (transaction.Record, error) {
	details, ok := transaction.NewDetails(req.Channel, req.ChannelIdentifier)
	if !ok || req.ChannelIdentifier == "" {
		return transaction.Record{}, ErrInvalidChannel
	}
	if req.UserID == "" {
		return transaction.Record{}, ErrUserRequired
	}

	m, err := s.merchants.Resolve(ctx, req.MerchantID)
	if err != nil {
		return transaction.Record{}, err
	}

	c, err := s.ledger.Card(ctx, req.CardID)
	if err != nil {
		return transaction.Record{}, err
	}

	if c.HasOwner() {
		owned, err := s.accounts.IsOwnedBy(ctx, c.ID, req.UserID)
		if err != nil {
			return transaction.Record{}, err
		}
		if !owned {
			logging.WithRequest(ctx, s.logger).Warn("payment rejected: card owned by another user",
				slog.String("card_id", c.ID),
				slog.String("user_id", req.UserID),
			)
			return transaction.Record{}, ErrCardNotOwnedByUser
		}
	} else if s.opts.RequireOwner {
		return transaction.Record{}, ErrCardOwnerRequired
	}

	amount, err := validateAmount(req.Amount)
	if err != nil {
		return transaction.Record{}, err
	}

	// The ledger re-checks ownership under its card lock so a reassignment
	// after the check above cannot let this payment through.
	policy := ledger.OwnerIfAssigned
	if s.opts.RequireOwner {
		policy = ledger.OwnerRequired
	}
	record, balance, err := s.ledger.Charge(ctx, ledger.Charge{
		CardID:   c.ID,
		Amount:   amount,
		Currency: c.Currency,
		Owner:    policy,
		Record: transaction.Record{
			UserID:     req.UserID,
			MerchantID: m.ID,
			DeviceID:   req.DeviceID,
			Details:    details,
		},
	})
	if err != nil {
		return transaction.Record{}, err
	}

	logging.WithRequest(ctx, s.logger).Info("payment authorized",
		slog.String("transaction_id", record.ID),
		slog.String("channel", string(record.Channel())),
		slog.String("card", card.MaskNumber(c.Number)),
		slog.String("merchant_id", m.ID),
		slog.String("amount", record.Amount.StringFixed(transaction.AmountScale)),
		slog.String("balance", balance.StringFixed(card.BalanceScale)),
	)
	return record, nil
}

func validateAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	scaled, err := ledger.ToScale(amount, transaction.AmountScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !scaled.IsPositive() || scaled.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, ledger.ErrInvalidAmount
	}
	return scaled, nil
}
