package factories

import (
	"math/rand"
	"time"

	"github.com/lucsky/cuid"

	"github.com/chrisdamba/retailiq/internal/models"
)

const (
	taxRate               = 0.08
	freeShippingThreshold = 50.0
	flatShipping          = 5.99
)

var paymentMethods = []string{"card", "card", "card", "paypal", "apple_pay", "gift_card"}

type SalesTransactionFactory struct {
	rng     *rand.Rand
	catalog []models.InventoryItem
}

func NewSalesTransactionFactory(rng *rand.Rand, catalog []models.InventoryItem) *SalesTransactionFactory {
	return &SalesTransactionFactory{rng: rng, catalog: catalog}
}

// CreateSalesTransaction builds a checkout of one to four catalog lines.
func (f *SalesTransactionFactory) CreateSalesTransaction(customerID, segment string, at time.Time) models.SalesTransaction {
	lineCount := f.rng.Intn(4) + 1
	items := make([]models.LineItem, 0, lineCount)
	seen := make(map[string]bool, lineCount)
	var subtotal float64
	for i := 0; i < lineCount; i++ {
		product := f.catalog[f.rng.Intn(len(f.catalog))]
		if seen[product.ProductID] {
			continue
		}
		seen[product.ProductID] = true
		qty := f.rng.Intn(3) + 1
		total := roundCents(product.SellPrice * float64(qty))
		subtotal += total
		items = append(items, models.LineItem{
			ProductID:       product.ProductID,
			ProductName:     product.ProductName,
			Category:        product.Category,
			Quantity:        qty,
			UnitPrice:       product.SellPrice,
			TotalPrice:      total,
			CostOfGoodsSold: product.CostPerUnit,
		})
	}

	subtotal = roundCents(subtotal)
	tax := roundCents(subtotal * taxRate)
	shipping := flatShipping
	if subtotal >= freeShippingThreshold {
		shipping = 0
	}

	return models.SalesTransaction{
		ID:              cuid.New(),
		Timestamp:       at.UnixMilli(),
		CustomerID:      customerID,
		Items:           items,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           roundCents(subtotal + tax + shipping),
		PaymentMethod:   paymentMethods[f.rng.Intn(len(paymentMethods))],
		CustomerSegment: segment,
	}
}
