package merchant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Catalog resolves merchants for payment authorization and seeds reference data.
type Catalog struct {
	repo Repository
}

// NewCatalog builds a merchant catalog.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Resolve returns the merchant or ErrMerchantNotFound.
func (c *Catalog) Resolve(ctx context.Context, merchantID string) (Merchant, error) {
	if merchantID == "" {
		return Merchant{}, ErrMerchantNotFound
	}
	return c.repo.Get(ctx, merchantID)
}

// CreateCategory registers a merchant category.
func (c *Catalog) CreateCategory(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return Category{}, fmt.Errorf("category name must be 1-50 characters")
	}
	category := Category{ID: uuid.NewString(), Name: name}
	if err := c.repo.CreateCategory(ctx, category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// CreateMerchant registers a merchant under an existing category.
func (c *Catalog) CreateMerchant(ctx context.Context, name, categoryID string) (Merchant, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return Merchant{}, fmt.Errorf("merchant name must be 1-50 characters")
	}
	m := Merchant{ID: uuid.NewString(), Name: name, CategoryID: categoryID}
	if err := c.repo.CreateMerchant(ctx, m); err != nil {
		return Merchant{}, err
	}
	return m, nil
}
