package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/chrisdamba/retailiq/internal/models"
)

type TransactionRepository struct {
	mu           sync.RWMutex
	transactions []models.SalesTransaction
	ids          map[string]struct{}
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{ids: make(map[string]struct{})}
}

func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]models.SalesTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneTransactions(r.transactions), nil
}

func (r *TransactionRepository) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]models.SalesTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.SalesTransaction, 0)
	for _, tx := range r.transactions {
		if tx.CustomerID == customerID {
			tx.Items = slices.Clone(tx.Items)
			out = append(out, tx)
		}
	}
	return out, nil
}

// BulkCreate appends transactions in order. The whole batch is rejected when
// any id is already stored or repeated within the batch.
func (r *TransactionRepository) BulkCreate(ctx context.Context, transactions []models.SalesTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]struct{}, len(transactions))
	for _, tx := range transactions {
		_, stored := r.ids[tx.ID]
		_, repeated := batch[tx.ID]
		if stored || repeated {
			return fmt.Errorf("duplicate transaction id %q", tx.ID)
		}
		batch[tx.ID] = struct{}{}
	}
	for _, tx := range transactions {
		tx.Items = slices.Clone(tx.Items)
		r.transactions = append(r.transactions, tx)
		r.ids[tx.ID] = struct{}{}
	}
	return nil
}

func (r *TransactionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transactions), nil
}

func (r *TransactionRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = nil
	r.ids = make(map[string]struct{})
	return nil
}

func cloneTransactions(in []models.SalesTransaction) []models.SalesTransaction {
	out := make([]models.SalesTransaction, len(in))
	for i, tx := range in {
		tx.Items = slices.Clone(tx.Items)
		out[i] = tx
	}
	return out
}
