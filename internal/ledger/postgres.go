package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	defaultJournalLimit   = 100
)

// PostgresLedger keeps card balances in PostgreSQL. Every balance change is a
// single conditional UPDATE so concurrent postings on a card cannot overdraw it.
type PostgresLedger struct {
	db   *pgxpool.Pool
	opts options
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool, opts ...Option) *PostgresLedger {
	return &PostgresLedger{db: db, opts: buildOptions(opts)}
}

// CreateBank registers an issuing bank.
func (l *PostgresLedger) CreateBank(ctx context.Context, name string) (card.Bank, error) {
	id := uuid.New()
	bank := card.Bank{ID: id.String(), Name: name}
	err := l.db.QueryRow(ctx, `INSERT INTO banks (id, name) VALUES ($1, $2) RETURNING created_at`,
		id, name).Scan(&bank.CreatedAt)
	if err != nil {
		return card.Bank{}, storageErr("insert bank", err)
	}
	bank.CreatedAt = bank.CreatedAt.UTC()
	return bank, nil
}

// CreateCard validates and registers an unassigned card with a zero balance.
func (l *PostgresLedger) CreateCard(ctx context.Context, input NewCard) (card.Card, error) {
	input, err := validateNewCard(input, l.opts.defaultCurrency)
	if err != nil {
		return card.Card{}, err
	}
	bankID, err := uuid.Parse(input.BankID)
	if err != nil {
		return card.Card{}, ErrBankNotFound
	}

	id := uuid.New()
	c := card.Card{
		ID:         id.String(),
		Number:     input.Number,
		Type:       input.Type,
		BankID:     input.BankID,
		Expiration: input.Expiration,
		Currency:   input.Currency,
		Balance:    decimal.Zero,
	}
	err = l.db.QueryRow(ctx, `INSERT INTO cards (id, card_number, card_type, bank_id, expiration_date, currency, balance)
        VALUES ($1, $2, $3, $4, $5, $6, 0) RETURNING created_at`,
		id, c.Number, string(c.Type), bankID, c.Expiration, c.Currency).Scan(&c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return card.Card{}, ErrDuplicateCardNumber
			case pgForeignKeyViolation:
				return card.Card{}, ErrBankNotFound
			}
		}
		return card.Card{}, storageErr("insert card", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

const cardColumns = `id, card_number, card_type, bank_id, expiration_date, currency, balance::text, owner_id, created_at`

// Card loads a card by identifier.
func (l *PostgresLedger) Card(ctx context.Context, cardID string) (card.Card, error) {
	id, err := uuid.Parse(cardID)
	if err != nil {
		return card.Card{}, ErrCardNotFound
	}
	c, err := scanCard(l.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return card.Card{}, ErrCardNotFound
		}
		return card.Card{}, storageErr("select card", err)
	}
	return c, nil
}

// Debit subtracts amount when the card holds enough funds in currency.
func (l *PostgresLedger) Debit(ctx context.Context, cardID string, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	amount, err := postingAmount(amount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	id, err := uuid.Parse(cardID)
	if err != nil {
		return decimal.Decimal{}, ErrCardNotFound
	}
	return l.debit(ctx, l.db, id, amount, currency)
}

// Credit adds amount to the card balance when currencies match.
func (l *PostgresLedger) Credit(ctx context.Context, cardID string, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	amount, err := postingAmount(amount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	id, err := uuid.Parse(cardID)
	if err != nil {
		return decimal.Decimal{}, ErrCardNotFound
	}

	var raw string
	err = l.db.QueryRow(ctx, `UPDATE cards SET balance = balance + $1::numeric
        WHERE id = $2 AND currency = $3 RETURNING balance::text`,
		amount.String(), id, currency).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := l.classify(ctx, l.db, id, currency); err != nil {
			return decimal.Decimal{}, err
		}
	}
	if err != nil {
		return decimal.Decimal{}, storageErr("credit card", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, storageErr("parse balance", err)
	}
	return balance, nil
}

// Charge debits the card and inserts the transaction record in one database transaction.
func (l *PostgresLedger) Charge(ctx context.Context, charge Charge) (transaction.Record, decimal.Decimal, error) {
	amount, err := chargeAmount(charge.Amount)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}
	cardID, err := uuid.Parse(charge.CardID)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, ErrCardNotFound
	}
	if charge.Record.Details == nil {
		return transaction.Record{}, decimal.Decimal{}, storageErr("encode transaction", errors.New("record details are required"))
	}
	merchantID, err := uuid.Parse(charge.Record.MerchantID)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, storageErr("encode transaction", fmt.Errorf("merchant id %q: %w", charge.Record.MerchantID, err))
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, storageErr("begin charge", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if charge.Owner != OwnerUnchecked {
		// The row lock holds the owner steady until commit.
		var owner *string
		err := tx.QueryRow(ctx, `SELECT owner_id FROM cards WHERE id = $1 FOR UPDATE`, cardID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Record{}, decimal.Decimal{}, ErrCardNotFound
		}
		if err != nil {
			return transaction.Record{}, decimal.Decimal{}, storageErr("lock card", err)
		}
		if err := checkOwner(charge.Owner, owner, charge.Record.UserID); err != nil {
			return transaction.Record{}, decimal.Decimal{}, err
		}
	}

	balance, err := l.debit(ctx, tx, cardID, amount, charge.Currency)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, err
	}

	recordID := uuid.New()
	record := charge.Record
	record.ID = recordID.String()
	record.CardID = charge.CardID
	record.Amount = amount
	err = tx.QueryRow(ctx, `INSERT INTO transactions
        (id, user_id, card_id, merchant_id, amount, device_id, channel, channel_identifier)
        VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8) RETURNING created_at`,
		recordID, record.UserID, cardID, merchantID, record.Amount.StringFixed(transaction.AmountScale),
		record.DeviceID, string(record.Details.Channel()), record.Details.Identifier()).Scan(&record.CreatedAt)
	if err != nil {
		return transaction.Record{}, decimal.Decimal{}, storageErr("insert transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return transaction.Record{}, decimal.Decimal{}, storageErr("commit charge", err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, balance, nil
}

// Transactions lists journaled payments, newest first.
func (l *PostgresLedger) Transactions(ctx context.Context, filter transaction.Filter) ([]transaction.Record, error) {
	var (
		conds []string
		args  []any
	)
	if filter.CardID != "" {
		id, err := uuid.Parse(filter.CardID)
		if err != nil {
			return []transaction.Record{}, nil
		}
		args = append(args, id)
		conds = append(conds, fmt.Sprintf("card_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	args = append(args, limit)

	query := `SELECT id, user_id, card_id, merchant_id, amount::text, device_id, channel, channel_identifier, created_at
        FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("select transactions", err)
	}
	defer rows.Close()

	out := make([]transaction.Record, 0)
	for rows.Next() {
		var (
			r                   transaction.Record
			id, cardID, merchID uuid.UUID
			amount, channel     string
			identifier          string
			createdAt           time.Time
		)
		if err := rows.Scan(&id, &r.UserID, &cardID, &merchID, &amount, &r.DeviceID, &channel, &identifier, &createdAt); err != nil {
			return nil, storageErr("scan transaction", err)
		}
		r.ID = id.String()
		r.CardID = cardID.String()
		r.MerchantID = merchID.String()
		r.CreatedAt = createdAt.UTC()
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, storageErr("parse amount", err)
		}
		details, ok := transaction.NewDetails(transaction.Channel(channel), identifier)
		if !ok {
			return nil, storageErr("decode transaction", fmt.Errorf("unknown channel %q", channel))
		}
		r.Details = details
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate transactions", err)
	}
	return out, nil
}

// CardsOwnedBy lists the cards assigned to userID.
func (l *PostgresLedger) CardsOwnedBy(ctx context.Context, userID string) ([]card.Card, error) {
	rows, err := l.db.Query(ctx, `SELECT `+cardColumns+` FROM cards WHERE owner_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, storageErr("select owned cards", err)
	}
	defer rows.Close()

	out := make([]card.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, storageErr("scan card", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate cards", err)
	}
	return out, nil
}

// AssignOwner sets the owner unless another user already owns the card.
func (l *PostgresLedger) AssignOwner(ctx context.Context, cardID, userID string) error {
	id, err := uuid.Parse(cardID)
	if err != nil {
		return ErrCardNotFound
	}
	cmd, err := l.db.Exec(ctx, `UPDATE cards SET owner_id = $2
        WHERE id = $1 AND (owner_id IS NULL OR owner_id = $2)`, id, userID)
	if err != nil {
		return storageErr("assign owner", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := l.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, id).Scan(&exists); err != nil {
		return storageErr("check card", err)
	}
	if !exists {
		return ErrCardNotFound
	}
	return ErrOwnershipConflict
}

// ReleaseOwner clears the card owner.
func (l *PostgresLedger) ReleaseOwner(ctx context.Context, cardID string) error {
	id, err := uuid.Parse(cardID)
	if err != nil {
		return ErrCardNotFound
	}
	cmd, err := l.db.Exec(ctx, `UPDATE cards SET owner_id = NULL WHERE id = $1`, id)
	if err != nil {
		return storageErr("release owner", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (l *PostgresLedger) debit(ctx context.Context, q querier, cardID uuid.UUID, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	var raw string
	err := q.QueryRow(ctx, `UPDATE cards SET balance = balance - $1::numeric
        WHERE id = $2 AND currency = $3 AND balance >= $1::numeric
        RETURNING balance::text`, amount.String(), cardID, currency).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := l.classify(ctx, q, cardID, currency); err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.Decimal{}, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Decimal{}, storageErr("debit card", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, storageErr("parse balance", err)
	}
	return balance, nil
}

// classify explains why a conditional update matched no row. A nil result
// means the card exists in the requested currency.
func (l *PostgresLedger) classify(ctx context.Context, q querier, cardID uuid.UUID, currency string) error {
	var stored string
	err := q.QueryRow(ctx, `SELECT currency FROM cards WHERE id = $1`, cardID).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCardNotFound
	}
	if err != nil {
		return storageErr("select card currency", err)
	}
	if stored != currency {
		return ErrCurrencyMismatch
	}
	return nil
}

func scanCard(row pgx.Row) (card.Card, error) {
	var (
		c         card.Card
		id, bank  uuid.UUID
		cardType  string
		balance   string
		owner     *string
		createdAt time.Time
	)
	if err := row.Scan(&id, &c.Number, &cardType, &bank, &c.Expiration, &c.Currency, &balance, &owner, &createdAt); err != nil {
		return card.Card{}, err
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return card.Card{}, err
	}
	c.ID = id.String()
	c.BankID = bank.String()
	c.Type = card.Type(cardType)
	c.Balance = amount
	c.OwnerID = owner
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
