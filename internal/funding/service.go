package funding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/logging"
)

// Service credits prepaid cards after the acquirer approves the funds.
type Service struct {
	ledger   ledger.Ledger
	acquirer Acquirer
	logger   *slog.Logger
}

// NewService builds a top-up service. A nil acquirer approves everything.
func NewService(ledgerBackend ledger.Ledger, acquirer Acquirer, logger *slog.Logger) *Service {
	if acquirer == nil {
		acquirer = StaticAcquirer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledgerBackend, acquirer: acquirer, logger: logger}
}

// TopUpInput captures a credit to a card. An empty currency means the card's own.
type TopUpInput struct {
	CardID   string
	Amount   decimal.Decimal
	Currency string
}

// TopUpResult is the domain outcome of a top-up.
type TopUpResult struct {
	CardID            string
	OwnerID           string
	Balance           decimal.Decimal
	Currency          string
	AcquirerReference string
	CompletedAt       time.Time
}

// TopUp authorizes the funds with the acquirer and credits the card.
func (s *Service) TopUp(ctx context.Context, input TopUpInput) (TopUpResult, error) {
	amount, err := ledger.ToScale(input.Amount, card.BalanceScale)
	if err != nil {
		return TopUpResult{}, err
	}
	if !amount.IsPositive() {
		return TopUpResult{}, ledger.ErrInvalidAmount
	}

	c, err := s.ledger.Card(ctx, input.CardID)
	if err != nil {
		return TopUpResult{}, err
	}
	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = c.Currency
	}
	// Funds are only requested from the acquirer for a credit the card accepts.
	if currency != c.Currency {
		return TopUpResult{}, ledger.ErrCurrencyMismatch
	}

	decision, err := s.acquirer.AuthorizeTopUp(ctx, TopUpAuthorization{
		CardID:   c.ID,
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		return TopUpResult{}, fmt.Errorf("acquirer: %w", err)
	}

	balance, err := s.ledger.Credit(ctx, c.ID, amount, currency)
	if err != nil {
		return TopUpResult{}, err
	}

	logging.WithRequest(ctx, s.logger).Info("card topped up",
		slog.String("card", card.MaskNumber(c.Number)),
		slog.String("amount", amount.String()),
		slog.String("reference", decision.Reference),
	)

	result := TopUpResult{
		CardID:            c.ID,
		Balance:           balance,
		Currency:          currency,
		AcquirerReference: decision.Reference,
		CompletedAt:       time.Now().UTC(),
	}
	if c.OwnerID != nil {
		result.OwnerID = *c.OwnerID
	}
	return result, nil
}
