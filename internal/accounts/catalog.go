package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/ledger"
)

// ErrOwnershipConflict is returned when a card owned by one user is assigned to another.
var ErrOwnershipConflict = ledger.ErrOwnershipConflict

// Store is the ownership storage the catalog needs from a ledger backend.
type Store interface {
	Card(ctx context.Context, cardID string) (card.Card, error)
	CardsOwnedBy(ctx context.Context, userID string) ([]card.Card, error)
	AssignOwner(ctx context.Context, cardID, userID string) error
	ReleaseOwner(ctx context.Context, cardID string) error
}

// Catalog answers card ownership questions and guards owner reassignment.
type Catalog struct {
	store  Store
	logger *slog.Logger
}

// NewCatalog builds an account catalog over the given store.
func NewCatalog(store Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, logger: logger}
}

// CardsOf returns the identifiers of cards assigned to userID.
func (c *Catalog) CardsOf(ctx context.Context, userID string) ([]string, error) {
	cards, err := c.store.CardsOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cards))
	for _, owned := range cards {
		ids = append(ids, owned.ID)
	}
	return ids, nil
}

// Cards returns the full cards assigned to userID.
func (c *Catalog) Cards(ctx context.Context, userID string) ([]card.Card, error) {
	return c.store.CardsOwnedBy(ctx, userID)
}

// IsOwnedBy reports whether cardID is currently assigned to userID.
func (c *Catalog) IsOwnedBy(ctx context.Context, cardID, userID string) (bool, error) {
	owned, err := c.store.Card(ctx, cardID)
	if err != nil {
		return false, err
	}
	return owned.OwnedBy(userID), nil
}

// AssignCard attaches cardID to userID. A card owned by a different user must
// be released first; assigning to the current owner is a no-op.
func (c *Catalog) AssignCard(ctx context.Context, cardID, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if err := c.store.AssignOwner(ctx, cardID, userID); err != nil {
		if errors.Is(err, ErrOwnershipConflict) {
			c.logger.Warn("card assignment rejected", slog.String("card_id", cardID), slog.String("user_id", userID))
		}
		return err
	}
	c.logger.Info("card assigned", slog.String("card_id", cardID), slog.String("user_id", userID))
	return nil
}

// ReleaseCard clears the owner of cardID.
func (c *Catalog) ReleaseCard(ctx context.Context, cardID string) error {
	if err := c.store.ReleaseOwner(ctx, cardID); err != nil {
		return err
	}
	c.logger.Info("card released", slog.String("card_id", cardID))
	return nil
}
