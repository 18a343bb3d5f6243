package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/cache"
	"github.com/chrisdamba/retailiq/internal/models"
)

var fixed = analytics.FixedClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))

func TestOpenStore_MemoryPersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.json")

	st, err := openStore(ctx, models.StoreConfig{Driver: "memory", SnapshotPath: path}, fixed)
	require.NoError(t, err)
	require.NoError(t, st.inventory.BulkCreate(ctx, []models.InventoryItem{{ProductID: "p1", CurrentStock: 3, MaxStock: 10}}))
	require.NoError(t, st.inventory.UpdateStock(ctx, "p1", 9))
	require.NoError(t, st.persist())
	require.NoError(t, st.close())

	reopened, err := openStore(ctx, models.StoreConfig{Driver: "memory", SnapshotPath: path}, fixed)
	require.NoError(t, err)
	item, err := reopened.inventory.GetItem(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 9, item.CurrentStock)
	assert.Equal(t, fixed.Now().UnixMilli(), item.LastRestocked)
}

func TestOpenStore_Sqlite(t *testing.T) {
	ctx := context.Background()
	st, err := openStore(ctx, models.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "retailiq.db")}, fixed)
	require.NoError(t, err)
	defer st.close()

	require.NoError(t, st.transactions.BulkCreate(ctx, []models.SalesTransaction{{ID: "t1", CustomerID: "c1", Total: 10}}))
	n, err := st.transactions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, st.persist())
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), models.StoreConfig{Driver: "mongo"}, fixed)
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestOpenCache_DisabledOrUnreachableFallsBackToNoop(t *testing.T) {
	c, closeFn := openCache(context.Background(), models.CacheConfig{Enabled: false}, zap.NewNop())
	assert.IsType(t, cache.Noop{}, c)
	assert.NoError(t, closeFn())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	c, closeFn = openCache(ctx, models.CacheConfig{Enabled: true, RedisAddr: "127.0.0.1:1", TTL: time.Minute}, zap.NewNop())
	assert.IsType(t, cache.Noop{}, c)
	assert.NoError(t, closeFn())
}

func TestSeedFor(t *testing.T) {
	assert.Equal(t, int64(7), seedFor(&models.Config{Seed: 7}))
	assert.NotZero(t, seedFor(&models.Config{}))
}
