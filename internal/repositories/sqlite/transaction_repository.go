package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/chrisdamba/retailiq/internal/models"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const selectTransactions = `SELECT id, ts, customer_id, items, subtotal, tax, shipping, total,
	payment_method, customer_segment FROM sales_transactions`

func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]models.SalesTransaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]models.SalesTransaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions+` WHERE customer_id = ? ORDER BY rowid`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", customerID, err)
	}
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]models.SalesTransaction, error) {
	defer rows.Close()

	transactions := make([]models.SalesTransaction, 0)
	for rows.Next() {
		var tx models.SalesTransaction
		var items string
		var paymentMethod, segment sql.NullString
		if err := rows.Scan(
			&tx.ID,
			&tx.Timestamp,
			&tx.CustomerID,
			&items,
			&tx.Subtotal,
			&tx.Tax,
			&tx.Shipping,
			&tx.Total,
			&paymentMethod,
			&segment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if err := json.Unmarshal([]byte(items), &tx.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items of %s: %w", tx.ID, err)
		}
		tx.PaymentMethod = paymentMethod.String
		tx.CustomerSegment = segment.String
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// BulkCreate inserts the batch in a single transaction.
func (r *TransactionRepository) BulkCreate(ctx context.Context, transactions []models.SalesTransaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO sales_transactions
		(id, ts, customer_id, items, subtotal, tax, shipping, total, payment_method, customer_segment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range transactions {
		items, err := json.Marshal(tx.Items)
		if err != nil {
			return fmt.Errorf("failed to marshal items of %s: %w", tx.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			tx.ID,
			tx.Timestamp,
			tx.CustomerID,
			string(items),
			tx.Subtotal,
			tx.Tax,
			tx.Shipping,
			tx.Total,
			tx.PaymentMethod,
			tx.CustomerSegment,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}
	return dbTx.Commit()
}

func (r *TransactionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales_transactions").Scan(&count)
	return count, err
}

func (r *TransactionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sales_transactions")
	return err
}
