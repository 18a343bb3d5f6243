package models

// CategoryPreference is a customer's share of purchased units in a category.
type CategoryPreference struct {
	Category   string  `json:"category"`
	Quantity   int     `json:"quantity"`
	Percentage float64 `json:"percentage"`
}

// CustomerMetrics is derived from one customer's transactions.
type CustomerMetrics struct {
	CustomerID               string               `json:"customerId"`
	LifetimeValue            float64              `json:"lifetimeValue"`
	TotalOrders              int                  `json:"totalOrders"`
	AverageOrderValue        float64              `json:"averageOrderValue"`
	FirstPurchaseDate        int64                `json:"firstPurchaseDate"`
	LastPurchaseDate         int64                `json:"lastPurchaseDate"`
	DaysSinceLastPurchase    int                  `json:"daysSinceLastPurchase"`
	AverageDaysBetweenOrders float64              `json:"averageDaysBetweenOrders"`
	ChurnRisk                RiskLevel            `json:"churnRisk"`
	ChurnScore               float64              `json:"churnScore"`
	PreferredCategories      []CategoryPreference `json:"preferredCategories"`
	Segment                  Segment              `json:"segment"`
	PredictedNextPurchase    int64                `json:"predictedNextPurchase"`
	EngagementScore          float64              `json:"engagementScore"`
}

type SegmentCount struct {
	Segment    Segment `json:"segment"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ChurnRiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// CustomerIntelligenceAnalytics is the portfolio-level view over all customers.
type CustomerIntelligenceAnalytics struct {
	GeneratedAt               int64                 `json:"generatedAt"`
	TotalCustomers            int                   `json:"totalCustomers"`
	AverageLifetimeValue      float64               `json:"averageLifetimeValue"`
	ChurnRate                 float64               `json:"churnRate"`
	RetentionRate             float64               `json:"retentionRate"`
	NewCustomerRate           float64               `json:"newCustomerRate"`
	CustomerSegments          []SegmentCount        `json:"customerSegments"`
	ChurnRiskDistribution     ChurnRiskDistribution `json:"churnRiskDistribution"`
	TopCustomers              []CustomerMetrics     `json:"topCustomers"`
	ReactivationOpportunities []CustomerMetrics     `json:"reactivationOpportunities"`
	Customers                 []CustomerMetrics     `json:"customers"`
}

// RecommendedAction is a campaign instruction for the marketing dispatcher.
type RecommendedAction struct {
	CustomerID    string   `json:"customerId"`
	Action        string   `json:"action"`
	Priority      Priority `json:"priority"`
	LifetimeValue float64  `json:"lifetimeValue"`
}

type RetentionReport struct {
	GeneratedAt          int64               `json:"generatedAt"`
	AtRiskCustomers      []CustomerMetrics   `json:"atRiskCustomers"`
	ReactivationTargets  []CustomerMetrics   `json:"reactivationTargets"`
	LoyaltyOpportunities []CustomerMetrics   `json:"loyaltyOpportunities"`
	RecommendedActions   []RecommendedAction `json:"recommendedActions"`
}
