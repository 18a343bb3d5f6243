package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
	"github.com/chrisdamba/retailiq/internal/repositories"
)

var (
	_ repositories.TransactionRepository = (*TransactionRepository)(nil)
	_ repositories.InventoryRepository   = (*InventoryRepository)(nil)
)

var restockedAt = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

func sampleTransactions() []models.SalesTransaction {
	return []models.SalesTransaction{
		{ID: "t1", Timestamp: 1000, CustomerID: "c1", Total: 10, Items: []models.LineItem{{ProductID: "p1", Category: "flower", Quantity: 1, TotalPrice: 10}}},
		{ID: "t2", Timestamp: 2000, CustomerID: "c2", Total: 20},
		{ID: "t3", Timestamp: 3000, CustomerID: "c1", Total: 30},
	}
}

func sampleInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{ProductID: "p1", ProductName: "Blue Dream", Category: "flower", CurrentStock: 10, MaxStock: 50, LeadTimeDays: 7},
		{ProductID: "p2", ProductName: "Gummies", Category: "edibles", CurrentStock: 4, MaxStock: 20, LeadTimeDays: 3},
	}
}

func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()

	require.NoError(t, repo.BulkCreate(ctx, sampleTransactions()))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t1", all[0].ID)
	assert.Equal(t, "t3", all[2].ID)

	mine, err := repo.ListTransactionsByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "t3", mine[1].ID)

	none, err := repo.ListTransactionsByCustomer(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, repo.DeleteAll(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactionRepository_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	require.NoError(t, repo.BulkCreate(ctx, sampleTransactions()))

	first, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	first[0].Total = 999
	first[0].Items[0].Quantity = 999

	second, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, second[0].Total)
	assert.Equal(t, 1, second[0].Items[0].Quantity)
}

func TestTransactionRepository_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	require.NoError(t, repo.BulkCreate(ctx, sampleTransactions()))

	err := repo.BulkCreate(ctx, []models.SalesTransaction{{ID: "t4"}, {ID: "t1"}})
	require.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "rejected batch is not partially applied")
}

func TestInventoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository(analytics.FixedClock(restockedAt))
	require.NoError(t, repo.BulkCreate(ctx, sampleInventory()))

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)

	item, err := repo.GetItem(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Gummies", item.ProductName)

	_, err = repo.GetItem(ctx, "missing")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	require.NoError(t, repo.UpdateStock(ctx, "p2", 25))
	item, err = repo.GetItem(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 25, item.CurrentStock)
	assert.Equal(t, restockedAt.UnixMilli(), item.LastRestocked)

	assert.ErrorIs(t, repo.UpdateStock(ctx, "missing", 1), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStock(ctx, "p1", -1), repositories.ErrInvalidStock)

	require.NoError(t, repo.DeleteAll(ctx))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_RoundTripsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, WriteSnapshot(path, Snapshot{
		Transactions: sampleTransactions(),
		Inventory:    sampleInventory(),
	}))

	txRepo, invRepo, err := Open(path, nil)
	require.NoError(t, err)

	snap := Export(txRepo, invRepo)
	assert.Equal(t, sampleTransactions(), snap.Transactions)
	assert.Equal(t, sampleInventory(), snap.Inventory)
}

func TestOpen_EmptyPath(t *testing.T) {
	txRepo, invRepo, err := Open("", nil)
	require.NoError(t, err)

	n, _ := txRepo.Count(context.Background())
	assert.Zero(t, n)
	n, _ = invRepo.Count(context.Background())
	assert.Zero(t, n)
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	txRepo, _, err := Open(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.NoError(t, err)
	n, _ := txRepo.Count(context.Background())
	assert.Zero(t, n)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, _, err := Open(path, nil)
	assert.Error(t, err)
}
