package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

// cardSlot serializes every mutation of a single card.
type cardSlot struct {
	mu   sync.Mutex
	card card.Card
}

type inMemoryLedger struct {
	opts options

	mu      sync.RWMutex
	banks   map[string]card.Bank
	cards   map[string]*cardSlot
	numbers map[string]string

	journalMu sync.RWMutex
	journal   []transaction.Record
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests
// and local development. Postings on different cards never contend.
func NewInMemory(opts ...Option) Ledger {
	return &inMemoryLedger{
		opts:    buildOptions(opts),
		banks:   make(map[string]card.Bank),
		cards:   make(map[string]*cardSlot),
		numbers: make(map[string]string),
	}
}

func (l *inMemoryLedger) CreateBank(_ context.Context, name string) (card.Bank, error) {
	bank := card.Bank{ID: uuid.NewString(), Name: name, CreatedAt: l.opts.now()}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.banks[bank.ID] = bank
	return bank, nil
}

func (l *inMemoryLedger) CreateCard(_ context.Context, input NewCard) (card.Card, error) {
	input, err := validateNewCard(input, l.opts.defaultCurrency)
	if err != nil {
		return card.Card{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.banks[input.BankID]; !ok {
		return card.Card{}, ErrBankNotFound
	}
	if _, exists := l.numbers[input.Number]; exists {
		return card.Card{}, ErrDuplicateCardNumber
	}

	c := card.Card{
		ID:         uuid.NewString(),
		Number:     input.Number,
		Type:       input.Type,
		BankID:     input.BankID,
		Expiration: input.Expiration,
		Currency:   input.Currency,
		Balance:    decimal.Zero,
		CreatedAt:  l.opts.now(),
	}
	l.cards[c.ID] = &cardSlot{card: c}
	l.numbers[c.Number] = c.ID
	return c, nil
}

func (l *inMemoryLedger) slot(cardID string) (*cardSlot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.cards[cardID]
	if !ok {
		return nil, ErrCardNotFound
	}
	return s, nil
}

func (l *inMemoryLedger) Card(_ context.Context, cardID string) (card.Card, error) {
	s, err := l.slot(cardID)
	if err != nil {
		return card.Card{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.card), nil
}

func (l *inMemoryLedger) Debit(ctx context.Context, cardID string, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	amount, err := postingAmount(amount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	s, err := l.slot(cardID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkDebit(s.card, amount, currency); err != nil {
		return decimal.Decimal{}, err
	}
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, err
	}
	s.card.Balance = s.card.Balance.Sub(amount)
	return s.card.Balance, nil
}

func (l *inMemoryLedger) Credit(ctx context.Context, cardID string, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	amount, err := postingAmount(amount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	s, err := l.slot(cardID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card.Currency != currency {
		return decimal.Decimal{}, ErrCurrencyMismatch
	}
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, err
	}
	s.card.Balance = s.card.Balance.Add(amount)
	return s.card.Balance, nil
}

func (l *inMemoryLedger) Charge(ctx context.Context, charge Charge) (transaction.Record, decimal.Decimal, error) {
	amount, err := chargeAmount(charge.Amount)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}
	s, err := l.slot(charge.CardID)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkOwner(charge.Owner, s.card.OwnerID, charge.Record.UserID); err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}
	if err := checkDebit(s.card, amount, charge.Currency); err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}
	if err := ctx.Err(); err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}

	record := charge.Record
	record.ID = uuid.NewString()
	record.CardID = charge.CardID
	record.Amount = amount
	record.CreatedAt = l.opts.now()

	l.journalMu.Lock()
	l.journal = append(l.journal, record)
	l.journalMu.Unlock()

	s.card.Balance = s.card.Balance.Sub(amount)
	return record, s.card.Balance, nil
}

func (l *inMemoryLedger) Transactions(_ context.Context, filter transaction.Filter) ([]transaction.Record, error) {
	l.journalMu.RLock()
	defer l.journalMu.RUnlock()

	out := make([]transaction.Record, 0)
	for i := len(l.journal) - 1; i >= 0; i-- {
		if !filter.Matches(l.journal[i]) {
			continue
		}
		out = append(out, l.journal[i])
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (l *inMemoryLedger) CardsOwnedBy(_ context.Context, userID string) ([]card.Card, error) {
	l.mu.RLock()
	slots := make([]*cardSlot, 0, len(l.cards))
	for _, s := range l.cards {
		slots = append(slots, s)
	}
	l.mu.RUnlock()

	out := make([]card.Card, 0)
	for _, s := range slots {
		s.mu.Lock()
		if s.card.OwnedBy(userID) {
			out = append(out, snapshot(s.card))
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (l *inMemoryLedger) AssignOwner(_ context.Context, cardID, userID string) error {
	s, err := l.slot(cardID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.card.HasOwner() && !s.card.OwnedBy(userID) {
		return ErrOwnershipConflict
	}
	owner := userID
	s.card.OwnerID = &owner
	return nil
}

func (l *inMemoryLedger) ReleaseOwner(_ context.Context, cardID string) error {
	s, err := l.slot(cardID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card.OwnerID = nil
	return nil
}

func checkDebit(c card.Card, amount decimal.Decimal, currency string) error {
	if c.Currency != currency {
		return ErrCurrencyMismatch
	}
	if amount.GreaterThan(c.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}

// snapshot detaches the owner pointer so callers cannot mutate ledger state.
func snapshot(c card.Card) card.Card {
	if c.OwnerID != nil {
		owner := *c.OwnerID
		c.OwnerID = &owner
	}
	return c
}
