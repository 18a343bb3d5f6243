package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
	"github.com/chrisdamba/retailiq/internal/repositories"
)

type InventoryRepository struct {
	clock analytics.Clock

	mu    sync.RWMutex
	items []models.InventoryItem
	index map[string]int
}

func NewInventoryRepository(clock analytics.Clock) *InventoryRepository {
	if clock == nil {
		clock = analytics.SystemClock
	}
	return &InventoryRepository{clock: clock, index: make(map[string]int)}
}

func (r *InventoryRepository) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.InventoryItem{}, r.items...), nil
}

func (r *InventoryRepository) GetItem(ctx context.Context, productID string) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[productID]
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, repositories.ErrNotFound)
	}
	item := r.items[i]
	return &item, nil
}

func (r *InventoryRepository) UpdateStock(ctx context.Context, productID string, newStock int) error {
	if newStock < 0 {
		return repositories.ErrInvalidStock
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[productID]
	if !ok {
		return fmt.Errorf("product %q: %w", productID, repositories.ErrNotFound)
	}
	r.items[i].Restock(newStock, r.clock.Now())
	return nil
}

func (r *InventoryRepository) BulkCreate(ctx context.Context, items []models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]struct{}, len(items))
	for _, item := range items {
		_, stored := r.index[item.ProductID]
		_, repeated := batch[item.ProductID]
		if stored || repeated {
			return fmt.Errorf("duplicate product id %q", item.ProductID)
		}
		batch[item.ProductID] = struct{}{}
	}
	for _, item := range items {
		r.index[item.ProductID] = len(r.items)
		r.items = append(r.items, item)
	}
	return nil
}

func (r *InventoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *InventoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	r.index = make(map[string]int)
	return nil
}
