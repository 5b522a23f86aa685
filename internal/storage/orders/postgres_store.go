package orders

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/buylow/internal/domain"
)

const defaultQueryTimeout = 10 * time.Second

// Schema creates the orders table the PostgresStore writes to.
const Schema = `
DO $$ BEGIN
	CREATE TYPE asset_type AS ENUM ('EQUITY');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

DO $$ BEGIN
	CREATE TYPE instruction AS ENUM ('BUY', 'SELL');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS orders (
	id                  SERIAL PRIMARY KEY,
	session             TEXT NOT NULL,
	duration            TEXT NOT NULL,
	order_type          TEXT NOT NULL,
	order_strategy_type TEXT NOT NULL,
	symbol              TEXT NOT NULL,
	asset_type          asset_type NOT NULL,
	instruction         instruction NOT NULL,
	quantity            INTEGER NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const insertOrderQuery = `
	INSERT INTO orders
		(session, duration, order_type, order_strategy_type, symbol, asset_type, instruction, quantity)
	VALUES ($1, $2, $3, $4, $5, $6::asset_type, $7::instruction, $8)`

// PostgresStore inserts placed orders into a PostgreSQL orders table.
type PostgresStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultQueryTimeout}
}

// OpenPostgresStore connects to dsn using the lib/pq driver.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	return NewPostgresStore(db), nil
}

// EnsureSchema creates the enum types and the orders table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return errors.Wrap(err, "create orders schema")
	}
	return nil
}

// Save inserts the order record.
func (s *PostgresStore) Save(ctx context.Context, record domain.OrderRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, insertOrderQuery,
		record.Session, record.Duration, record.OrderType, record.OrderStrategyType,
		record.Symbol, record.AssetType, record.Instruction, record.Quantity)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return errors.Wrapf(err, "insert order (%s)", pqErr.Code.Name())
		}
		return errors.Wrap(err, "insert order")
	}

	return nil
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
