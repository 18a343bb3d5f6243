package models

import "time"

// InventoryItem is the current stock state of one product. The derived fields
// (AverageDailySales, StockoutRisk, TurnoverRate, DaysOfInventory) are
// recomputed on every analytics pass.
type InventoryItem struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	Category      string  `json:"category"`
	CurrentStock  int     `json:"currentStock"`
	ReorderPoint  int     `json:"reorderPoint"`
	MaxStock      int     `json:"maxStock"`
	CostPerUnit   float64 `json:"costPerUnit"`
	SellPrice     float64 `json:"sellPrice"`
	Supplier      string  `json:"supplier"`
	LeadTimeDays  int     `json:"leadTimeDays"`
	LastRestocked int64   `json:"lastRestocked,omitempty"` // epoch milliseconds

	AverageDailySales float64   `json:"averageDailySales"`
	StockoutRisk      RiskLevel `json:"stockoutRisk"`
	TurnoverRate      float64   `json:"turnoverRate"`
	DaysOfInventory   float64   `json:"daysOfInventory"`
}

// StockValue is the value of the units on hand at cost.
func (i InventoryItem) StockValue() float64 {
	return float64(i.CurrentStock) * i.CostPerUnit
}

// Restock sets the stock level and stamps LastRestocked.
func (i *InventoryItem) Restock(newStock int, at time.Time) {
	i.CurrentStock = newStock
	i.LastRestocked = at.UnixMilli()
}

// ReorderRecommendation is handed to the procurement workflow.
type ReorderRecommendation struct {
	ProductID           string    `json:"productId"`
	ProductName         string    `json:"productName"`
	Supplier            string    `json:"supplier"`
	CurrentStock        int       `json:"currentStock"`
	ReorderPoint        int       `json:"reorderPoint"`
	RecommendedQuantity int       `json:"recommendedQuantity"`
	Urgency             Urgency   `json:"urgency"`
	StockoutRisk        RiskLevel `json:"stockoutRisk"`
}

type SupplierPerformance struct {
	Supplier        string  `json:"supplier"`
	ItemCount       int     `json:"itemCount"`
	AverageLeadTime float64 `json:"averageLeadTime"`
	Reliability     float64 `json:"reliability"`
}

type CategoryPerformance struct {
	Category     string  `json:"category"`
	ItemCount    int     `json:"itemCount"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	ProfitMargin float64 `json:"profitMargin"`
	TurnoverRate float64 `json:"turnoverRate"`
	StockValue   float64 `json:"stockValue"`
}

// InventoryAnalytics is the output of an inventory analytics pass.
type InventoryAnalytics struct {
	GeneratedAt            int64                   `json:"generatedAt"`
	TotalItems             int                     `json:"totalItems"`
	TotalStockValue        float64                 `json:"totalStockValue"`
	AverageTurnoverRate    float64                 `json:"averageTurnoverRate"`
	Items                  []InventoryItem         `json:"items"`
	LowStockAlerts         []InventoryItem         `json:"lowStockAlerts"`
	StockoutRisks          []InventoryItem         `json:"stockoutRisks"`
	OverStockItems         []InventoryItem         `json:"overStockItems"`
	ReorderRecommendations []ReorderRecommendation `json:"reorderRecommendations"`
	SupplierPerformance    []SupplierPerformance   `json:"supplierPerformance"`
	CategoryPerformance    []CategoryPerformance   `json:"categoryPerformance"`
}

// ForecastDay is one simulated day of demand.
type ForecastDay struct {
	Date          int64 `json:"date"` // epoch milliseconds
	ExpectedSales int   `json:"expectedSales"`
	StockLevel    int   `json:"stockLevel"`
	ReorderNeeded bool  `json:"reorderNeeded"`
}

type InventoryForecast struct {
	ProductID                string        `json:"productId"`
	ProductName              string        `json:"productName"`
	Days                     int           `json:"days"`
	AverageDailySales        float64       `json:"averageDailySales"`
	Forecast                 []ForecastDay `json:"forecast"`
	StockoutProbability      float64       `json:"stockoutProbability"`
	RecommendedReorderDate   int64         `json:"recommendedReorderDate"`
	RecommendedOrderQuantity int           `json:"recommendedOrderQuantity"`
}
