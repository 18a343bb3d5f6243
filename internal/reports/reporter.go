package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/cache"
	"github.com/chrisdamba/retailiq/internal/models"
	"github.com/chrisdamba/retailiq/internal/repositories"
)

const (
	KindRevenue   = "revenue"
	KindCustomers = "customers"
	KindCustomer  = "customer"
	KindRetention = "retention"
	KindInventory = "inventory"
	KindForecast  = "forecast"
)

type Options struct {
	Transactions repositories.TransactionRepository
	Inventory    repositories.InventoryRepository
	Analytics    models.AnalyticsConfig
	Clock        analytics.Clock
	Rand         analytics.RandSource
	Cache        cache.ReportCache
	Logger       *zap.Logger
}

// Reporter loads snapshots from the repositories and runs the engines over
// them. Reports are cached under a fingerprint of the snapshot they were
// computed from, so any write to the store produces a new key.
type Reporter struct {
	transactions repositories.TransactionRepository
	inventory    repositories.InventoryRepository

	revenue     *analytics.RevenueAnalytics
	customers   *analytics.CustomerIntelligence
	forecasting *analytics.InventoryForecasting

	cache cache.ReportCache
	log   *zap.Logger
}

func New(opts Options) *Reporter {
	if opts.Clock == nil {
		opts.Clock = analytics.SystemClock
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Reporter{
		transactions: opts.Transactions,
		inventory:    opts.Inventory,
		revenue:      analytics.NewRevenueAnalytics(opts.Analytics, opts.Clock),
		customers:    analytics.NewCustomerIntelligence(opts.Analytics, opts.Clock),
		forecasting:  analytics.NewInventoryForecasting(opts.Analytics, opts.Clock, opts.Rand),
		cache:        opts.Cache,
		log:          opts.Logger,
	}
}

func (r *Reporter) Revenue(ctx context.Context) (models.RevenueMetrics, error) {
	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return models.RevenueMetrics{}, err
	}
	return cached(ctx, r, KindRevenue, cacheKey(KindRevenue, txs), func() models.RevenueMetrics {
		return r.revenue.ComputeMetrics(txs)
	}), nil
}

func (r *Reporter) Customers(ctx context.Context) (models.CustomerIntelligenceAnalytics, error) {
	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return models.CustomerIntelligenceAnalytics{}, err
	}
	return cached(ctx, r, KindCustomers, cacheKey(KindCustomers, txs), func() models.CustomerIntelligenceAnalytics {
		return r.customers.Aggregate(txs)
	}), nil
}

// Customer reports on a single customer. An unknown customer is not an
// error: it yields the metrics of a customer with no purchases.
func (r *Reporter) Customer(ctx context.Context, customerID string) (models.CustomerMetrics, error) {
	txs, err := r.transactions.ListTransactionsByCustomer(ctx, customerID)
	if err != nil {
		return models.CustomerMetrics{}, fmt.Errorf("failed to load transactions of customer %s: %w", customerID, err)
	}
	key := cacheKey(KindCustomer+":"+customerID, txs)
	return cached(ctx, r, KindCustomer, key, func() models.CustomerMetrics {
		return r.customers.AnalyzeCustomer(customerID, txs)
	}), nil
}

func (r *Reporter) Retention(ctx context.Context) (models.RetentionReport, error) {
	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return models.RetentionReport{}, err
	}
	return cached(ctx, r, KindRetention, cacheKey(KindRetention, txs), func() models.RetentionReport {
		return r.customers.RetentionReport(txs)
	}), nil
}

func (r *Reporter) Inventory(ctx context.Context) (models.InventoryAnalytics, error) {
	items, txs, err := r.loadInventory(ctx)
	if err != nil {
		return models.InventoryAnalytics{}, err
	}
	return cached(ctx, r, KindInventory, inventoryKey(items, txs), func() models.InventoryAnalytics {
		return r.forecasting.ComputeAnalytics(items, txs)
	}), nil
}

// Forecast is never cached: each run draws fresh demand multipliers.
func (r *Reporter) Forecast(ctx context.Context, productID string, days int) (models.InventoryForecast, error) {
	items, txs, err := r.loadInventory(ctx)
	if err != nil {
		return models.InventoryForecast{}, err
	}
	fc, err := r.forecasting.Forecast(items, txs, productID, days)
	if err != nil {
		return models.InventoryForecast{}, err
	}
	r.log.Debug("forecast computed",
		zap.String("product_id", productID),
		zap.Int("days", fc.Days),
		zap.Float64("stockout_probability", fc.StockoutProbability),
	)
	return fc, nil
}

// Restock sets the stock level of productID and returns the stored item.
func (r *Reporter) Restock(ctx context.Context, productID string, newStock int) (*models.InventoryItem, error) {
	items, txs, err := r.loadInventory(ctx)
	if err != nil {
		return nil, err
	}
	staleKey := inventoryKey(items, txs)

	if err := r.inventory.UpdateStock(ctx, productID, newStock); err != nil {
		return nil, fmt.Errorf("failed to restock %s: %w", productID, err)
	}
	if err := r.cache.Delete(ctx, staleKey); err != nil {
		r.log.Warn("report cache invalidation failed", zap.String("key", staleKey), zap.Error(err))
	}

	item, err := r.inventory.GetItem(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s: %w", productID, err)
	}
	r.log.Info("product restocked", zap.String("product_id", productID), zap.Int("stock", newStock))
	return item, nil
}

func (r *Reporter) loadTransactions(ctx context.Context) ([]models.SalesTransaction, error) {
	txs, err := r.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txs, nil
}

func (r *Reporter) loadInventory(ctx context.Context) ([]models.InventoryItem, []models.SalesTransaction, error) {
	items, err := r.inventory.ListItems(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return items, txs, nil
}

func cached[T any](ctx context.Context, r *Reporter, kind, key string, compute func() T) T {
	var v T
	found, err := r.cache.Get(ctx, key, &v)
	if err != nil {
		r.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	if err == nil && found {
		r.log.Debug("report served from cache", zap.String("report", kind), zap.String("key", key))
		return v
	}

	runID := uuid.NewString()
	start := time.Now()
	v = compute()
	r.log.Info("report computed",
		zap.String("report", kind),
		zap.String("run_id", runID),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := r.cache.Set(ctx, key, v); err != nil {
		r.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v
}

// cacheKey is kind plus a hash of every value the report depends on.
func cacheKey(kind string, parts ...any) string {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// encoding plain model structs into a hash cannot fail
		_ = enc.Encode(p)
	}
	return fmt.Sprintf("%s:%016x", kind, h.Sum64())
}

func inventoryKey(items []models.InventoryItem, txs []models.SalesTransaction) string {
	return cacheKey(KindInventory, items, txs)
}
