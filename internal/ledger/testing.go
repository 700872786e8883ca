package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets the balance of a card when using the in-memory ledger.
func SeedBalance(l Ledger, cardID string, amount decimal.Decimal) {
	mem, ok := l.(*inMemoryLedger)
	if !ok {
		return
	}
	s, err := mem.slot(cardID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card.Balance = amount
}
