package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/factories"
	"github.com/chrisdamba/retailiq/internal/models"
)

const seedBatchSize = 500

var (
	seedCustomers int
	seedProducts  int
	seedDays      int
	seedReplace   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic transactions and inventory into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		seed := seedFor(cfg)
		ds, err := factories.Generate(factories.DatasetOptions{
			Seed:      seed,
			Customers: seedCustomers,
			Products:  seedProducts,
			Days:      seedDays,
			Now:       time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if seedReplace {
			if err := a.store.transactions.DeleteAll(ctx); err != nil {
				return fmt.Errorf("failed to clear transactions: %w", err)
			}
			if err := a.store.inventory.DeleteAll(ctx); err != nil {
				return fmt.Errorf("failed to clear inventory: %w", err)
			}
		}

		if err := a.store.inventory.BulkCreate(ctx, ds.Inventory); err != nil {
			return fmt.Errorf("failed to load inventory: %w", err)
		}
		if err := loadTransactions(ctx, a, ds.Transactions); err != nil {
			return err
		}
		if err := a.store.persist(); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}

		log.Info("seed complete",
			zap.Int64("seed", seed),
			zap.Int("products", len(ds.Inventory)),
			zap.Int("transactions", len(ds.Transactions)),
			zap.String("driver", cfg.Store.Driver),
		)
		return nil
	},
}

func loadTransactions(ctx context.Context, a *app, txs []models.SalesTransaction) error {
	bar := progressbar.Default(int64(len(txs)), "loading transactions")
	for start := 0; start < len(txs); start += seedBatchSize {
		end := min(start+seedBatchSize, len(txs))
		if err := a.store.transactions.BulkCreate(ctx, txs[start:end]); err != nil {
			return fmt.Errorf("failed to load transactions %d-%d: %w", start, end, err)
		}
		_ = bar.Add(end - start)
	}
	return bar.Finish()
}

func init() {
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 500, "number of synthetic customers")
	seedCmd.Flags().IntVar(&seedProducts, "products", 100, "number of catalog products")
	seedCmd.Flags().IntVar(&seedDays, "days", 365, "days of transaction history")
	seedCmd.Flags().BoolVar(&seedReplace, "replace", false, "delete existing data first")
	rootCmd.AddCommand(seedCmd)
}
