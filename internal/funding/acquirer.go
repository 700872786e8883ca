package funding

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Acquirer represents a connector to the processor that collects top-up funds.
type Acquirer interface {
	AuthorizeTopUp(ctx context.Context, input TopUpAuthorization) (AuthorizationDecision, error)
}

// AuthorizationDecision captures the acquirer response.
type AuthorizationDecision struct {
	Reference string
	Status    string
}

// TopUpAuthorization carries what the acquirer needs to approve a top-up.
type TopUpAuthorization struct {
	CardID   string
	Amount   decimal.Decimal
	Currency string
}

// StaticAcquirer approves every top-up with a synthetic reference.
type StaticAcquirer struct{}

// AuthorizeTopUp approves the funding request.
func (StaticAcquirer) AuthorizeTopUp(_ context.Context, _ TopUpAuthorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: "approved"}, nil
}
