package factories

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/chrisdamba/retailiq/internal/models"
)

var categories = map[string][]string{
	"electronics": {"Wireless Earbuds", "USB-C Charger", "Smart Speaker", "Fitness Tracker", "Webcam"},
	"grocery":     {"Cold Brew Coffee", "Olive Oil", "Granola", "Sparkling Water", "Dark Chocolate"},
	"home":        {"Scented Candle", "Throw Blanket", "Ceramic Mug", "Desk Lamp", "Plant Pot"},
	"apparel":     {"Crew Socks", "Rain Jacket", "Canvas Tote", "Beanie", "Running Tee"},
	"beauty":      {"Lip Balm", "Face Serum", "Hand Cream", "Sheet Mask", "Sunscreen"},
}

var categoryNames = []string{"electronics", "grocery", "home", "apparel", "beauty"}

type InventoryItemFactory struct {
	fake      faker.Faker
	rng       *rand.Rand
	suppliers []string
}

func NewInventoryItemFactory(fake faker.Faker, rng *rand.Rand, supplierCount int) *InventoryItemFactory {
	suppliers := make([]string, max(1, supplierCount))
	for i := range suppliers {
		suppliers[i] = fake.Company().Name()
	}
	return &InventoryItemFactory{fake: fake, rng: rng, suppliers: suppliers}
}

func (f *InventoryItemFactory) CreateInventoryItem() models.InventoryItem {
	category := categoryNames[f.rng.Intn(len(categoryNames))]
	names := categories[category]
	cost := f.fake.Float64(2, 2, 60)
	maxStock := f.rng.Intn(400) + 100 // 100 to 499 units

	return models.InventoryItem{
		ProductID:    cuid.New(),
		ProductName:  fmt.Sprintf("%s %s", names[f.rng.Intn(len(names))], f.fake.Lorem().Word()),
		Category:     category,
		CurrentStock: f.rng.Intn(maxStock + 1),
		ReorderPoint: maxStock / 5,
		MaxStock:     maxStock,
		CostPerUnit:  cost,
		SellPrice:    roundCents(cost * (1.3 + f.rng.Float64()*0.9)), // 30% to 120% markup
		Supplier:     f.suppliers[f.rng.Intn(len(f.suppliers))],
		LeadTimeDays: f.rng.Intn(14) + 2,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
