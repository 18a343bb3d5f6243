package models

type ProductRevenue struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	Revenue      float64 `json:"revenue"`
	QuantitySold int     `json:"quantitySold"`
	Orders       int     `json:"orders"`
}

type CategoryRevenue struct {
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type ProfitMargins struct {
	TotalCOGS   float64 `json:"totalCogs"`
	GrossProfit float64 `json:"grossProfit"`
	GrossMargin float64 `json:"grossMargin"`
	NetProfit   float64 `json:"netProfit"`
	NetMargin   float64 `json:"netMargin"`
}

// RevenueTrends compares the last 30 days with the 30 days before them.
type RevenueTrends struct {
	RevenueGrowth       float64 `json:"revenueGrowth"`
	OrderGrowth         float64 `json:"orderGrowth"`
	AvgOrderValueGrowth float64 `json:"avgOrderValueGrowth"`
}

// SeasonalBucket aggregates one calendar month (YYYY-MM, UTC).
type SeasonalBucket struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Growth  float64 `json:"growth"`
	Trend   Trend   `json:"trend"`
}

type RevenueMetrics struct {
	GeneratedAt       int64             `json:"generatedAt"`
	TotalRevenue      float64           `json:"totalRevenue"`
	DailyRevenue      float64           `json:"dailyRevenue"`
	WeeklyRevenue     float64           `json:"weeklyRevenue"`
	MonthlyRevenue    float64           `json:"monthlyRevenue"`
	TotalOrders       int               `json:"totalOrders"`
	AverageOrderValue float64           `json:"averageOrderValue"`
	RevenueByProduct  []ProductRevenue  `json:"revenueByProduct"`
	RevenueByCategory []CategoryRevenue `json:"revenueByCategory"`
	ProfitMargins     ProfitMargins     `json:"profitMargins"`
	Trends            RevenueTrends     `json:"trends"`
	SeasonalTrends    []SeasonalBucket  `json:"seasonalTrends"`
}
