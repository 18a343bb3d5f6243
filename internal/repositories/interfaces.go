package repositories

import (
	"context"
	"errors"

	"github.com/chrisdamba/retailiq/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidStock = errors.New("stock level must not be negative")
)

type TransactionRepository interface {
	ListTransactions(ctx context.Context) ([]models.SalesTransaction, error)
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]models.SalesTransaction, error)
	BulkCreate(ctx context.Context, transactions []models.SalesTransaction) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type InventoryRepository interface {
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	GetItem(ctx context.Context, productID string) (*models.InventoryItem, error)
	// UpdateStock sets the stock level and stamps LastRestocked with the
	// repository clock.
	UpdateStock(ctx context.Context, productID string, newStock int) error
	BulkCreate(ctx context.Context, items []models.InventoryItem) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
