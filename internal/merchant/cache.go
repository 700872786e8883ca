package merchant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "merchant:v1:"

// CachedRepository is a read-through Redis cache in front of another
// repository. Merchants never change once created, so entries only expire by TTL.
type CachedRepository struct {
	next   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRepository wraps next with a Redis cache.
func NewCachedRepository(next Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CreateCategory delegates to the wrapped repository.
func (r *CachedRepository) CreateCategory(ctx context.Context, category Category) error {
	return r.next.CreateCategory(ctx, category)
}

// CreateMerchant delegates to the wrapped repository.
func (r *CachedRepository) CreateMerchant(ctx context.Context, merchant Merchant) error {
	return r.next.CreateMerchant(ctx, merchant)
}

// Get serves from Redis when possible. Cache failures fall through to the
// wrapped repository.
func (r *CachedRepository) Get(ctx context.Context, id string) (Merchant, error) {
	key := cachePrefix + id

	cached, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var m Merchant
		if err := json.Unmarshal(cached, &m); err == nil {
			return m, nil
		}
		r.logger.Warn("discarding undecodable merchant cache entry", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("merchant cache lookup failed", slog.String("key", key), slog.Any("error", err))
	}

	m, err := r.next.Get(ctx, id)
	if err != nil {
		return Merchant{}, err
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return m, nil
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("merchant cache store failed", slog.String("key", key), slog.Any("error", err))
	}
	return m, nil
}
