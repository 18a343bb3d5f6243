package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/retailiq/internal/models"
)

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const selectTransactions = `
        SELECT id, ts, customer_id, items, subtotal, tax, shipping, total,
            payment_method, customer_segment
        FROM sales_transactions`

func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]models.SalesTransaction, error) {
	rows, err := r.pool.Query(ctx, selectTransactions+` ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *TransactionRepository) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]models.SalesTransaction, error) {
	rows, err := r.pool.Query(ctx, selectTransactions+` WHERE customer_id = $1 ORDER BY seq`, customerID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]models.SalesTransaction, error) {
	defer rows.Close()

	transactions := make([]models.SalesTransaction, 0)
	for rows.Next() {
		var tx models.SalesTransaction
		var items []byte
		err := rows.Scan(
			&tx.ID,
			&tx.Timestamp,
			&tx.CustomerID,
			&items,
			&tx.Subtotal,
			&tx.Tax,
			&tx.Shipping,
			&tx.Total,
			&tx.PaymentMethod,
			&tx.CustomerSegment,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &tx.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items of %s: %w", tx.ID, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) BulkCreate(ctx context.Context, transactions []models.SalesTransaction) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"sales_transactions"},
		[]string{
			"id", "ts", "customer_id", "items", "subtotal", "tax",
			"shipping", "total", "payment_method", "customer_segment",
		},
		pgx.CopyFromSlice(len(transactions), func(i int) ([]interface{}, error) {
			tx := transactions[i]
			items, err := json.Marshal(tx.Items)
			if err != nil {
				return nil, err
			}
			return []interface{}{
				tx.ID,
				tx.Timestamp,
				tx.CustomerID,
				items,
				tx.Subtotal,
				tx.Tax,
				tx.Shipping,
				tx.Total,
				tx.PaymentMethod,
				tx.CustomerSegment,
			}, nil
		}),
	)
	return err
}

func (r *TransactionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_transactions").Scan(&count)
	return count, err
}

func (r *TransactionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE sales_transactions")
	return err
}
