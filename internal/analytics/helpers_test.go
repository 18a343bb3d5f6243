package analytics

import (
	"time"

	"github.com/chrisdamba/retailiq/internal/models"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) int64 {
	return testNow.UnixMilli() - int64(d*float64(models.MillisPerDay))
}

func line(productID, category string, qty int, totalPrice, unitCost float64) models.LineItem {
	return models.LineItem{
		ProductID:       productID,
		ProductName:     "Product " + productID,
		Category:        category,
		Quantity:        qty,
		UnitPrice:       totalPrice / float64(qty),
		TotalPrice:      totalPrice,
		CostOfGoodsSold: unitCost,
	}
}

func sale(id, customerID string, ts int64, total float64, items ...models.LineItem) models.SalesTransaction {
	return models.SalesTransaction{
		ID:         id,
		Timestamp:  ts,
		CustomerID: customerID,
		Items:      items,
		Subtotal:   total,
		Total:      total,
	}
}

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

func testConfig() models.AnalyticsConfig {
	return models.DefaultAnalyticsConfig()
}
