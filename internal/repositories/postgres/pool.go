package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool against dsn, verifies it and creates the tables the
// repositories need.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sales_transactions (
            seq BIGSERIAL,
            id TEXT PRIMARY KEY,
            ts BIGINT NOT NULL,
            customer_id TEXT NOT NULL,
            items JSONB NOT NULL,
            subtotal DOUBLE PRECISION NOT NULL,
            tax DOUBLE PRECISION NOT NULL,
            shipping DOUBLE PRECISION NOT NULL,
            total DOUBLE PRECISION NOT NULL,
            payment_method TEXT NOT NULL DEFAULT '',
            customer_segment TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sales_transactions_customer ON sales_transactions(customer_id)`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
            seq BIGSERIAL,
            product_id TEXT PRIMARY KEY,
            product_name TEXT NOT NULL,
            category TEXT NOT NULL,
            current_stock INTEGER NOT NULL CHECK (current_stock >= 0),
            reorder_point INTEGER NOT NULL,
            max_stock INTEGER NOT NULL,
            cost_per_unit DOUBLE PRECISION NOT NULL,
            sell_price DOUBLE PRECISION NOT NULL,
            supplier TEXT NOT NULL,
            lead_time_days INTEGER NOT NULL,
            last_restocked BIGINT NOT NULL DEFAULT 0
        )`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
