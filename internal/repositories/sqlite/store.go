package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the database at dsn in WAL mode and bootstraps the schema.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sales_transactions (
			id TEXT PRIMARY KEY,
			ts INTEGER NOT NULL,
			customer_id TEXT NOT NULL,
			items TEXT NOT NULL,
			subtotal REAL NOT NULL,
			tax REAL NOT NULL,
			shipping REAL NOT NULL,
			total REAL NOT NULL,
			payment_method TEXT,
			customer_segment TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
			product_id TEXT PRIMARY KEY,
			product_name TEXT NOT NULL,
			category TEXT NOT NULL,
			current_stock INTEGER NOT NULL,
			reorder_point INTEGER NOT NULL,
			max_stock INTEGER NOT NULL,
			cost_per_unit REAL NOT NULL,
			sell_price REAL NOT NULL,
			supplier TEXT NOT NULL,
			lead_time_days INTEGER NOT NULL,
			last_restocked INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_transactions_customer ON sales_transactions(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_transactions_ts ON sales_transactions(ts)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
