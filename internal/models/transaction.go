package models

import "time"

// LineItem is a single product line on a completed sale.
type LineItem struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Category        string  `json:"category"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	TotalPrice      float64 `json:"totalPrice"`
	CostOfGoodsSold float64 `json:"costOfGoodsSold"` // per unit
}

// SalesTransaction is an immutable record of a completed checkout.
type SalesTransaction struct {
	ID              string     `json:"id"`
	Timestamp       int64      `json:"timestamp"` // epoch milliseconds
	CustomerID      string     `json:"customerId"`
	Items           []LineItem `json:"items"`
	Subtotal        float64    `json:"subtotal"`
	Tax             float64    `json:"tax"`
	Shipping        float64    `json:"shipping"`
	Total           float64    `json:"total"`
	PaymentMethod   string     `json:"paymentMethod"`
	CustomerSegment string     `json:"customerSegment"`
}

// Time returns the completion time in UTC.
func (t SalesTransaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp).UTC()
}

// MillisPerDay is the length of a day in transaction timestamp units.
const MillisPerDay int64 = 86_400_000
