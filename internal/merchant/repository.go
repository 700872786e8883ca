package merchant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uz-pay/uz_pay/internal/ledger"
)

// Repository persists merchants and their categories.
type Repository interface {
	CreateCategory(ctx context.Context, category Category) error
	CreateMerchant(ctx context.Context, merchant Merchant) error
	Get(ctx context.Context, id string) (Merchant, error)
}

// PostgresRepository stores merchants in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateCategory inserts a merchant category.
func (r *PostgresRepository) CreateCategory(ctx context.Context, category Category) error {
	id, err := uuid.Parse(category.ID)
	if err != nil {
		return storageErr("encode category", err)
	}
	if _, err := r.db.Exec(ctx, `INSERT INTO merchant_categories (id, name) VALUES ($1, $2)`, id, category.Name); err != nil {
		return storageErr("insert category", err)
	}
	return nil
}

// CreateMerchant inserts a merchant referencing an existing category.
func (r *PostgresRepository) CreateMerchant(ctx context.Context, merchant Merchant) error {
	id, err := uuid.Parse(merchant.ID)
	if err != nil {
		return storageErr("encode merchant", err)
	}
	categoryID, err := uuid.Parse(merchant.CategoryID)
	if err != nil {
		return ErrCategoryNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO merchants (id, name, category_id) VALUES ($1, $2, $3)`, id, merchant.Name, categoryID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrCategoryNotFound
	}
	if err != nil {
		return storageErr("insert merchant", err)
	}
	return nil
}

// Get fetches a merchant by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Merchant, error) {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		return Merchant{}, ErrMerchantNotFound
	}
	var (
		m          Merchant
		idVal      uuid.UUID
		categoryID uuid.UUID
	)
	err = r.db.QueryRow(ctx, `SELECT id, name, category_id FROM merchants WHERE id = $1`, merchantID).
		Scan(&idVal, &m.Name, &categoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Merchant{}, ErrMerchantNotFound
	}
	if err != nil {
		return Merchant{}, storageErr("select merchant", err)
	}
	m.ID = idVal.String()
	m.CategoryID = categoryID.String()
	return m, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ledger.ErrStorage, op, err)
}
