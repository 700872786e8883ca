package merchant

import (
	"context"
	"errors"
	"testing"
)

func TestCatalogResolve(t *testing.T) {
	catalog := NewCatalog(NewMemoryRepository())
	ctx := context.Background()

	category, err := catalog.CreateCategory(ctx, "Groceries")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	m, err := catalog.CreateMerchant(ctx, "Korzinka", category.ID)
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	got, err := catalog.Resolve(ctx, m.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != m {
		t.Fatalf("expected %+v, got %+v", m, got)
	}

	if _, err := catalog.Resolve(ctx, "missing"); !errors.Is(err, ErrMerchantNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := catalog.Resolve(ctx, ""); !errors.Is(err, ErrMerchantNotFound) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
}

func TestCatalogCreateMerchantUnknownCategory(t *testing.T) {
	catalog := NewCatalog(NewMemoryRepository())
	if _, err := catalog.CreateMerchant(context.Background(), "Korzinka", "missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
	if _, err := catalog.CreateCategory(context.Background(), "  "); err == nil {
		t.Fatal("expected empty category name to be rejected")
	}
}
