package analytics

import (
	"slices"

	"github.com/chrisdamba/retailiq/internal/models"
)

const (
	topProductsLimit       = 20
	seasonalBucketLimit    = 12
	seasonalTrendThreshold = 5.0 // percent
	monthLayout            = "2006-01"
)

// RevenueAnalytics aggregates the transaction log into windowed revenue,
// margin and trend metrics.
type RevenueAnalytics struct {
	clock                 Clock
	operatingExpenseRatio float64
}

func NewRevenueAnalytics(cfg models.AnalyticsConfig, clock Clock) *RevenueAnalytics {
	if clock == nil {
		clock = SystemClock
	}
	return &RevenueAnalytics{
		clock:                 clock,
		operatingExpenseRatio: cfg.OperatingExpenseRatio,
	}
}

type productAccumulator struct {
	name     string
	revenue  ledger
	quantity int
	orders   int
	lastTx   int
}

type monthAccumulator struct {
	revenue ledger
	orders  int
}

// ComputeMetrics is a pure function of transactions and the clock reading.
// An empty log yields zeroed metrics with empty breakdowns.
func (r *RevenueAnalytics) ComputeMetrics(transactions []models.SalesTransaction) models.RevenueMetrics {
	now := r.clock.Now().UnixMilli()
	dayAgo := now - models.MillisPerDay
	weekAgo := now - 7*models.MillisPerDay
	monthAgo := now - 30*models.MillisPerDay

	var total, daily, weekly, monthly, cogs, lineRevenue ledger

	products := make(map[string]*productAccumulator)
	var productOrder []string
	categories := make(map[string]*ledger)
	var categoryOrder []string
	months := make(map[string]*monthAccumulator)

	for i, tx := range transactions {
		total.add(tx.Total)
		if tx.Timestamp >= dayAgo {
			daily.add(tx.Total)
		}
		if tx.Timestamp >= weekAgo {
			weekly.add(tx.Total)
		}
		if tx.Timestamp >= monthAgo {
			monthly.add(tx.Total)
		}

		month := tx.Time().Format(monthLayout)
		bucket, ok := months[month]
		if !ok {
			bucket = &monthAccumulator{}
			months[month] = bucket
		}
		bucket.revenue.add(tx.Total)
		bucket.orders++

		for _, item := range tx.Items {
			p, ok := products[item.ProductID]
			if !ok {
				p = &productAccumulator{name: item.ProductName, lastTx: -1}
				products[item.ProductID] = p
				productOrder = append(productOrder, item.ProductID)
			}
			p.revenue.add(item.TotalPrice)
			p.quantity += item.Quantity
			if p.lastTx != i {
				p.orders++
				p.lastTx = i
			}

			c, ok := categories[item.Category]
			if !ok {
				c = &ledger{}
				categories[item.Category] = c
				categoryOrder = append(categoryOrder, item.Category)
			}
			c.add(item.TotalPrice)
			lineRevenue.add(item.TotalPrice)

			cogs.add(item.CostOfGoodsSold * float64(item.Quantity))
		}
	}

	totalRevenue := total.float()
	return models.RevenueMetrics{
		GeneratedAt:       now,
		TotalRevenue:      totalRevenue,
		DailyRevenue:      daily.float(),
		WeeklyRevenue:     weekly.float(),
		MonthlyRevenue:    monthly.float(),
		TotalOrders:       len(transactions),
		AverageOrderValue: ratio(totalRevenue, float64(len(transactions))),
		RevenueByProduct:  revenueByProduct(products, productOrder),
		RevenueByCategory: revenueByCategory(categories, categoryOrder, lineRevenue.float()),
		ProfitMargins:     r.profitMargins(totalRevenue, cogs.float()),
		Trends:            revenueTrends(transactions, now),
		SeasonalTrends:    seasonalTrends(months),
	}
}

func revenueByProduct(products map[string]*productAccumulator, order []string) []models.ProductRevenue {
	out := make([]models.ProductRevenue, 0, len(order))
	for _, id := range order {
		p := products[id]
		out = append(out, models.ProductRevenue{
			ProductID:    id,
			ProductName:  p.name,
			Revenue:      p.revenue.float(),
			QuantitySold: p.quantity,
			Orders:       p.orders,
		})
	}
	sortedDesc(out, func(p models.ProductRevenue) float64 { return p.Revenue })
	return truncate(out, topProductsLimit)
}

func revenueByCategory(categories map[string]*ledger, order []string, lineRevenue float64) []models.CategoryRevenue {
	out := make([]models.CategoryRevenue, 0, len(order))
	for _, name := range order {
		revenue := categories[name].float()
		out = append(out, models.CategoryRevenue{
			Category:   name,
			Revenue:    revenue,
			Percentage: percentOf(revenue, lineRevenue),
		})
	}
	sortedDesc(out, func(c models.CategoryRevenue) float64 { return c.Revenue })
	return out
}

func (r *RevenueAnalytics) profitMargins(totalRevenue, totalCOGS float64) models.ProfitMargins {
	grossProfit := totalRevenue - totalCOGS
	netProfit := grossProfit - r.operatingExpenseRatio*totalRevenue
	return models.ProfitMargins{
		TotalCOGS:   totalCOGS,
		GrossProfit: grossProfit,
		GrossMargin: percentOf(grossProfit, totalRevenue),
		NetProfit:   netProfit,
		NetMargin:   percentOf(netProfit, totalRevenue),
	}
}

// revenueTrends compares [now-30d, now] with [now-60d, now-30d).
func revenueTrends(transactions []models.SalesTransaction, now int64) models.RevenueTrends {
	currentStart := now - 30*models.MillisPerDay
	previousStart := now - 60*models.MillisPerDay

	var currentRevenue, previousRevenue ledger
	var currentOrders, previousOrders int
	for _, tx := range transactions {
		switch {
		case tx.Timestamp >= currentStart && tx.Timestamp <= now:
			currentRevenue.add(tx.Total)
			currentOrders++
		case tx.Timestamp >= previousStart && tx.Timestamp < currentStart:
			previousRevenue.add(tx.Total)
			previousOrders++
		}
	}

	cur, prev := currentRevenue.float(), previousRevenue.float()
	currentAOV := ratio(cur, float64(currentOrders))
	previousAOV := ratio(prev, float64(previousOrders))
	return models.RevenueTrends{
		RevenueGrowth:       percentChange(cur, prev),
		OrderGrowth:         percentChange(float64(currentOrders), float64(previousOrders)),
		AvgOrderValueGrowth: percentChange(currentAOV, previousAOV),
	}
}

// seasonalTrends keeps the 12 most recent months in chronological order. Each
// bucket is labelled against the bucket before it in the kept list.
func seasonalTrends(months map[string]*monthAccumulator) []models.SeasonalBucket {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) > seasonalBucketLimit {
		keys = keys[len(keys)-seasonalBucketLimit:]
	}

	out := make([]models.SeasonalBucket, 0, len(keys))
	for i, k := range keys {
		bucket := models.SeasonalBucket{
			Month:   k,
			Revenue: months[k].revenue.float(),
			Orders:  months[k].orders,
			Trend:   models.TrendStable,
		}
		if i > 0 {
			bucket.Growth = percentChange(bucket.Revenue, out[i-1].Revenue)
			bucket.Trend = classifyTrend(bucket.Growth)
		}
		out = append(out, bucket)
	}
	return out
}

func classifyTrend(growth float64) models.Trend {
	switch {
	case growth > seasonalTrendThreshold:
		return models.TrendUp
	case growth < -seasonalTrendThreshold:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}
