package merchant

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	categories map[string]Category
	merchants  map[string]Merchant
}

// NewMemoryRepository constructs an in-memory repository for tests and development.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		categories: make(map[string]Category),
		merchants:  make(map[string]Merchant),
	}
}

func (r *memoryRepository) CreateCategory(_ context.Context, category Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.categories[category.ID]; exists {
		return errors.New("category exists")
	}
	r.categories[category.ID] = category
	return nil
}

func (r *memoryRepository) CreateMerchant(_ context.Context, merchant Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[merchant.CategoryID]; !ok {
		return ErrCategoryNotFound
	}
	if _, exists := r.merchants[merchant.ID]; exists {
		return errors.New("merchant exists")
	}
	r.merchants[merchant.ID] = merchant
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return Merchant{}, ErrMerchantNotFound
	}
	return m, nil
}
