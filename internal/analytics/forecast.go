package analytics

import (
	"math"
	"slices"
	"time"

	"github.com/chrisdamba/retailiq/internal/models"
)

// Forecast simulates daily demand for productID over days (the configured
// default when days <= 0). The item is recomputed from the transaction log
// first. Daily demand is average daily sales scaled by a uniform multiplier
// in [jitterMin, jitterMax), a fixed business parameter rather than a fitted
// model.
func (f *InventoryForecasting) Forecast(inventory []models.InventoryItem, transactions []models.SalesTransaction, productID string, days int) (models.InventoryForecast, error) {
	idx := slices.IndexFunc(inventory, func(item models.InventoryItem) bool {
		return item.ProductID == productID
	})
	if idx < 0 {
		return models.InventoryForecast{}, &NotFoundError{ProductID: productID}
	}
	velocity := extractVelocity(transactions, productID)
	item := recompute(inventory[idx], velocity[productID])
	return f.simulate(item, days), nil
}

func (f *InventoryForecasting) simulate(item models.InventoryItem, days int) models.InventoryForecast {
	if days <= 0 {
		days = f.forecastDays
	}
	now := f.clock.Now()
	nowMs := now.UnixMilli()

	forecast := make([]models.ForecastDay, 0, days)
	stock := item.CurrentStock
	firstZero := -1
	var reorderDate int64
	reorderFound := false

	f.mu.Lock()
	for i := 0; i < days; i++ {
		multiplier := f.jitterMin + f.uniform()*(f.jitterMax-f.jitterMin)
		expected := int(math.Round(item.AverageDailySales * multiplier))
		stock = max(0, stock-expected)

		day := models.ForecastDay{
			Date:          nowMs + int64(i+1)*models.MillisPerDay,
			ExpectedSales: expected,
			StockLevel:    stock,
			ReorderNeeded: stock <= item.ReorderPoint,
		}
		if stock == 0 && firstZero < 0 {
			firstZero = i
		}
		if day.ReorderNeeded && !reorderFound {
			reorderDate = day.Date
			reorderFound = true
		}
		forecast = append(forecast, day)
	}
	f.mu.Unlock()

	var stockoutProbability float64
	if firstZero >= 0 {
		stockoutProbability = float64(days-firstZero) / float64(days) * 100
	}
	if !reorderFound {
		reorderDate = now.Add(time.Duration(item.LeadTimeDays) * 24 * time.Hour).UnixMilli()
	}

	cover := item.AverageDailySales * float64(item.LeadTimeDays+forecastCoverDays)
	quantity := math.Max(float64(item.MaxStock-item.CurrentStock), cover)

	return models.InventoryForecast{
		ProductID:                item.ProductID,
		ProductName:              item.ProductName,
		Days:                     days,
		AverageDailySales:        item.AverageDailySales,
		Forecast:                 forecast,
		StockoutProbability:      stockoutProbability,
		RecommendedReorderDate:   reorderDate,
		RecommendedOrderQuantity: int(math.Ceil(quantity)),
	}
}

// uniform draws from the injected source; without one the multiplier is the
// midpoint of the jitter range.
func (f *InventoryForecasting) uniform() float64 {
	if f.rng == nil {
		return 0.5
	}
	return f.rng.Float64()
}
