package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
)

// Snapshot is the on-disk form of the memory store.
type Snapshot struct {
	Transactions []models.SalesTransaction `json:"transactions"`
	Inventory    []models.InventoryItem    `json:"inventory"`
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return &s, nil
}

func WriteSnapshot(path string, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Export captures the current contents of both repositories.
func Export(txRepo *TransactionRepository, invRepo *InventoryRepository) Snapshot {
	txRepo.mu.RLock()
	transactions := cloneTransactions(txRepo.transactions)
	txRepo.mu.RUnlock()

	invRepo.mu.RLock()
	items := append([]models.InventoryItem(nil), invRepo.items...)
	invRepo.mu.RUnlock()

	return Snapshot{Transactions: transactions, Inventory: items}
}

// Open returns repositories preloaded from the snapshot at path. An empty
// path or a file that does not exist yet yields empty repositories.
func Open(path string, clock analytics.Clock) (*TransactionRepository, *InventoryRepository, error) {
	txRepo := NewTransactionRepository()
	invRepo := NewInventoryRepository(clock)
	if path == "" {
		return txRepo, invRepo, nil
	}

	s, err := LoadSnapshot(path)
	if errors.Is(err, fs.ErrNotExist) {
		return txRepo, invRepo, nil
	}
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()
	if err := txRepo.BulkCreate(ctx, s.Transactions); err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if err := invRepo.BulkCreate(ctx, s.Inventory); err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return txRepo, invRepo, nil
}
