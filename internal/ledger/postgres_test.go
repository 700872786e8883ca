package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/transaction"
)

// These cases are rejected before the pool is touched, so a nil pool is enough.
func TestPostgresLedger_ChargeRejectsUnencodableRecords(t *testing.T) {
	l := NewPostgresLedger(nil)
	ctx := context.Background()
	charge := Charge{
		CardID:   uuid.NewString(),
		Amount:   decimal.RequireFromString("1.00"),
		Currency: "UZS",
		Record:   transaction.Record{UserID: "user-a", MerchantID: uuid.NewString()},
	}

	if _, _, err := l.Charge(ctx, charge); !errors.Is(err, ErrStorage) {
		t.Fatalf("missing details: expected storage failure, got %v", err)
	}

	charge.Record.Details = transaction.CardPayment{CardNumber: "8600123412341234"}
	charge.Record.MerchantID = "not-a-uuid"
	if _, _, err := l.Charge(ctx, charge); !errors.Is(err, ErrStorage) {
		t.Fatalf("bad merchant id: expected storage failure, got %v", err)
	}

	charge.Amount = decimal.RequireFromString("1e-20000000")
	if _, _, err := l.Charge(ctx, charge); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}
