package analytics

import (
	"math"
	"sync"

	"github.com/chrisdamba/retailiq/internal/models"
)

const (
	// daysOfInventory reported for items that are not selling
	noSalesDaysOfInventory = 999.0
	safetyStockDays        = 7
	mediumRiskBufferFactor = 1.5
	overStockRatio         = 0.8
	overStockMaxTurnover   = 2.0
	reorderCoverDays       = 30
	standardLeadTimeDays   = 7
	forecastCoverDays      = 14
	defaultForecastDays    = 30
)

// InventoryForecasting joins the inventory snapshot with sales velocity from
// the transaction log to classify stockout risk and plan replenishment.
type InventoryForecasting struct {
	clock        Clock
	jitterMin    float64
	jitterMax    float64
	forecastDays int

	mu  sync.Mutex // guards rng
	rng RandSource
}

func NewInventoryForecasting(cfg models.AnalyticsConfig, clock Clock, rng RandSource) *InventoryForecasting {
	if clock == nil {
		clock = SystemClock
	}
	days := cfg.ForecastDays
	if days <= 0 {
		days = defaultForecastDays
	}
	return &InventoryForecasting{
		clock:        clock,
		jitterMin:    cfg.DemandJitterMin,
		jitterMax:    cfg.DemandJitterMax,
		forecastDays: days,
		rng:          rng,
	}
}

type salesVelocity struct {
	totalSold int
	days      map[int64]struct{}
}

func (v *salesVelocity) averageDailySales() float64 {
	if v == nil {
		return 0
	}
	return float64(v.totalSold) / math.Max(1, float64(len(v.days)))
}

func (v *salesVelocity) sold() int {
	if v == nil {
		return 0
	}
	return v.totalSold
}

// extractVelocity sums units sold per product and counts the distinct UTC
// calendar days on which each sold. A non-empty only restricts the result to
// that product.
func extractVelocity(transactions []models.SalesTransaction, only string) map[string]*salesVelocity {
	out := make(map[string]*salesVelocity)
	for _, tx := range transactions {
		day := floorDiv(tx.Timestamp, models.MillisPerDay)
		for _, item := range tx.Items {
			if only != "" && item.ProductID != only {
				continue
			}
			v, ok := out[item.ProductID]
			if !ok {
				v = &salesVelocity{days: make(map[int64]struct{})}
				out[item.ProductID] = v
			}
			v.totalSold += item.Quantity
			v.days[day] = struct{}{}
		}
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// recompute returns a copy of item with its derived fields refreshed. The
// stored reorder point is a floor and is never lowered.
func recompute(item models.InventoryItem, v *salesVelocity) models.InventoryItem {
	avg := v.averageDailySales()
	item.AverageDailySales = avg

	item.DaysOfInventory = noSalesDaysOfInventory
	if avg > 0 {
		item.DaysOfInventory = float64(item.CurrentStock) / avg
	}

	item.TurnoverRate = 0
	if item.CurrentStock > 0 {
		item.TurnoverRate = float64(v.sold()) * 365 / float64(item.CurrentStock)
	}

	needed := int(math.Ceil(avg * float64(item.LeadTimeDays+safetyStockDays)))
	item.ReorderPoint = max(item.ReorderPoint, needed)

	item.StockoutRisk = stockoutRisk(item.CurrentStock, avg, item.LeadTimeDays)
	return item
}

// stockoutRisk compares days until stockout with the lead time plus a week of
// safety stock. Both boundaries are inclusive.
func stockoutRisk(currentStock int, averageDailySales float64, leadTimeDays int) models.RiskLevel {
	if averageDailySales == 0 {
		return models.RiskLow
	}
	daysUntilStockout := float64(currentStock) / averageDailySales
	leadBuffer := float64(leadTimeDays + safetyStockDays)
	switch {
	case daysUntilStockout <= leadBuffer:
		return models.RiskHigh
	case daysUntilStockout <= mediumRiskBufferFactor*leadBuffer:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func riskWeight(item models.InventoryItem) float64 {
	return float64(item.StockoutRisk.Weight()) * item.AverageDailySales
}

// ComputeAnalytics recomputes every item and rolls up stock, risk, reorder,
// supplier and category views. The inputs are not modified.
func (f *InventoryForecasting) ComputeAnalytics(inventory []models.InventoryItem, transactions []models.SalesTransaction) models.InventoryAnalytics {
	velocity := extractVelocity(transactions, "")

	items := make([]models.InventoryItem, 0, len(inventory))
	lowStock := make([]models.InventoryItem, 0)
	atRisk := make([]models.InventoryItem, 0)
	overStock := make([]models.InventoryItem, 0)
	reorders := make([]models.ReorderRecommendation, 0)
	turnovers := make([]float64, 0, len(inventory))
	var stockValue ledger

	for _, original := range inventory {
		item := recompute(original, velocity[original.ProductID])
		items = append(items, item)
		stockValue.add(item.StockValue())
		turnovers = append(turnovers, item.TurnoverRate)

		underReorderPoint := item.CurrentStock <= item.ReorderPoint
		if underReorderPoint {
			lowStock = append(lowStock, item)
		}
		if item.StockoutRisk != models.RiskLow {
			atRisk = append(atRisk, item)
		}
		if float64(item.CurrentStock) > overStockRatio*float64(item.MaxStock) && item.TurnoverRate < overStockMaxTurnover {
			overStock = append(overStock, item)
		}
		if underReorderPoint || item.StockoutRisk != models.RiskLow {
			reorders = append(reorders, reorderRecommendation(item, underReorderPoint))
		}
	}

	sortedDesc(atRisk, riskWeight)
	sortedDesc(reorders, func(r models.ReorderRecommendation) int { return r.Urgency.Rank() })

	return models.InventoryAnalytics{
		GeneratedAt:            f.clock.Now().UnixMilli(),
		TotalItems:             len(items),
		TotalStockValue:        stockValue.float(),
		AverageTurnoverRate:    mean(turnovers),
		Items:                  items,
		LowStockAlerts:         lowStock,
		StockoutRisks:          atRisk,
		OverStockItems:         overStock,
		ReorderRecommendations: reorders,
		SupplierPerformance:    supplierPerformance(items),
		CategoryPerformance:    categoryPerformance(items, transactions),
	}
}

func reorderRecommendation(item models.InventoryItem, underReorderPoint bool) models.ReorderRecommendation {
	qty := math.Max(float64(item.MaxStock-item.CurrentStock), item.AverageDailySales*reorderCoverDays)

	urgency := models.UrgencyPlanned
	switch {
	case item.StockoutRisk == models.RiskHigh:
		urgency = models.UrgencyImmediate
	case item.StockoutRisk == models.RiskMedium || underReorderPoint:
		urgency = models.UrgencySoon
	}

	return models.ReorderRecommendation{
		ProductID:           item.ProductID,
		ProductName:         item.ProductName,
		Supplier:            item.Supplier,
		CurrentStock:        item.CurrentStock,
		ReorderPoint:        item.ReorderPoint,
		RecommendedQuantity: int(math.Ceil(qty)),
		Urgency:             urgency,
		StockoutRisk:        item.StockoutRisk,
	}
}

func supplierPerformance(items []models.InventoryItem) []models.SupplierPerformance {
	type acc struct {
		leadTimes []float64
		excess    []float64
	}
	groups := make(map[string]*acc)
	var order []string
	for _, item := range items {
		g, ok := groups[item.Supplier]
		if !ok {
			g = &acc{}
			groups[item.Supplier] = g
			order = append(order, item.Supplier)
		}
		g.leadTimes = append(g.leadTimes, float64(item.LeadTimeDays))
		g.excess = append(g.excess, math.Max(0, float64(item.LeadTimeDays-standardLeadTimeDays)))
	}

	out := make([]models.SupplierPerformance, 0, len(order))
	for _, supplier := range order {
		g := groups[supplier]
		out = append(out, models.SupplierPerformance{
			Supplier:        supplier,
			ItemCount:       len(g.leadTimes),
			AverageLeadTime: mean(g.leadTimes),
			Reliability:     math.Max(0, 100-mean(g.excess)*10),
		})
	}
	return out
}

func categoryPerformance(items []models.InventoryItem, transactions []models.SalesTransaction) []models.CategoryPerformance {
	type acc struct {
		count      int
		turnovers  []float64
		stockValue ledger
	}
	groups := make(map[string]*acc)
	var order []string
	for _, item := range items {
		g, ok := groups[item.Category]
		if !ok {
			g = &acc{}
			groups[item.Category] = g
			order = append(order, item.Category)
		}
		g.count++
		g.turnovers = append(g.turnovers, item.TurnoverRate)
		g.stockValue.add(item.StockValue())
	}

	revenue := make(map[string]*ledger)
	cost := make(map[string]*ledger)
	for _, tx := range transactions {
		for _, line := range tx.Items {
			if _, tracked := groups[line.Category]; !tracked {
				continue
			}
			if revenue[line.Category] == nil {
				revenue[line.Category] = &ledger{}
				cost[line.Category] = &ledger{}
			}
			revenue[line.Category].add(line.TotalPrice)
			cost[line.Category].add(line.CostOfGoodsSold * float64(line.Quantity))
		}
	}

	out := make([]models.CategoryPerformance, 0, len(order))
	for _, category := range order {
		g := groups[category]
		var rev, cogs float64
		if l := revenue[category]; l != nil {
			rev, cogs = l.float(), cost[category].float()
		}
		out = append(out, models.CategoryPerformance{
			Category:     category,
			ItemCount:    g.count,
			Revenue:      rev,
			Cost:         cogs,
			ProfitMargin: percentOf(rev-cogs, rev),
			TurnoverRate: mean(g.turnovers),
			StockValue:   g.stockValue.float(),
		})
	}
	return out
}
