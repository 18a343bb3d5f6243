package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/cache"
	"github.com/chrisdamba/retailiq/internal/models"
	"github.com/chrisdamba/retailiq/internal/reports"
	"github.com/chrisdamba/retailiq/internal/repositories"
	"github.com/chrisdamba/retailiq/internal/repositories/memory"
	"github.com/chrisdamba/retailiq/internal/repositories/postgres"
	"github.com/chrisdamba/retailiq/internal/repositories/sqlite"
)

// store holds the repositories for the configured driver. persist writes the
// memory driver's state back to its snapshot and is a no-op for databases.
type store struct {
	transactions repositories.TransactionRepository
	inventory    repositories.InventoryRepository
	persist      func() error
	close        func() error
}

func openStore(ctx context.Context, cfg models.StoreConfig, clock analytics.Clock) (*store, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "memory":
		txRepo, invRepo, err := memory.Open(cfg.SnapshotPath, clock)
		if err != nil {
			return nil, err
		}
		persist := noop
		if cfg.SnapshotPath != "" {
			persist = func() error {
				return memory.WriteSnapshot(cfg.SnapshotPath, memory.Export(txRepo, invRepo))
			}
		}
		return &store{transactions: txRepo, inventory: invRepo, persist: persist, close: noop}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{
			transactions: sqlite.NewTransactionRepository(db),
			inventory:    sqlite.NewInventoryRepository(db, clock),
			persist:      noop,
			close:        db.Close,
		}, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{
			transactions: postgres.NewTransactionRepository(pool),
			inventory:    postgres.NewInventoryRepository(pool, clock),
			persist:      noop,
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

func openCache(ctx context.Context, cfg models.CacheConfig, log *zap.Logger) (cache.ReportCache, func() error) {
	if !cfg.Enabled {
		return cache.Noop{}, func() error { return nil }
	}
	rc, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		// reports still work uncached
		log.Warn("report cache unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return cache.Noop{}, func() error { return nil }
	}
	return rc, rc.Close
}

func seedFor(cfg *models.Config) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

type app struct {
	store    *store
	reporter *reports.Reporter
	closers  []func() error
}

func newApp(ctx context.Context, cfg *models.Config, log *zap.Logger) (*app, error) {
	clock := analytics.SystemClock
	st, err := openStore(ctx, cfg.Store, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	reportCache, closeCache := openCache(ctx, cfg.Cache, log)

	reporter := reports.New(reports.Options{
		Transactions: st.transactions,
		Inventory:    st.inventory,
		Analytics:    cfg.Analytics,
		Clock:        clock,
		Rand:         rand.New(rand.NewSource(seedFor(cfg))),
		Cache:        reportCache,
		Logger:       log,
	})
	return &app{store: st, reporter: reporter, closers: []func() error{closeCache, st.close}}, nil
}

func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
