package factories

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/retailiq/internal/models"
)

type DatasetOptions struct {
	Seed      int64
	Customers int
	Products  int
	Days      int
	Now       time.Time
}

type Dataset struct {
	Inventory    []models.InventoryItem
	Transactions []models.SalesTransaction
}

// customerProfile drives how often a synthetic customer buys and when they
// stopped, so the data covers every segment.
type customerProfile struct {
	segment     string
	ordersMin   int
	ordersMax   int
	inactiveMin int // days since the last order
	inactiveMax int
}

var profiles = []struct {
	weight  float64
	profile customerProfile
}{
	{0.40, customerProfile{"regular", 2, 8, 0, 60}},
	{0.10, customerProfile{"vip", 11, 20, 0, 30}},
	{0.20, customerProfile{"new", 1, 1, 0, 30}},
	{0.15, customerProfile{"at_risk", 2, 5, 91, 180}},
	{0.15, customerProfile{"churned", 1, 4, 181, 365}},
}

func pickProfile(rng *rand.Rand) customerProfile {
	r := rng.Float64()
	var cumulative float64
	for _, p := range profiles {
		cumulative += p.weight
		if r < cumulative {
			return p.profile
		}
	}
	return profiles[0].profile
}

// Generate builds a reproducible catalog and transaction history. Product and
// transaction ids are random cuids; everything else follows opts.Seed.
func Generate(opts DatasetOptions) (Dataset, error) {
	if opts.Customers < 1 || opts.Products < 1 || opts.Days < 1 {
		return Dataset{}, fmt.Errorf("customers, products and days must be positive")
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	fake := faker.NewWithSeed(rand.NewSource(opts.Seed))

	itemFactory := NewInventoryItemFactory(fake, rng, max(1, opts.Products/10))
	inventory := make([]models.InventoryItem, opts.Products)
	for i := range inventory {
		inventory[i] = itemFactory.CreateInventoryItem()
	}

	txFactory := NewSalesTransactionFactory(rng, inventory)
	var transactions []models.SalesTransaction
	for i := 0; i < opts.Customers; i++ {
		customerID := fmt.Sprintf("cust-%05d", i+1)
		transactions = append(transactions, customerHistory(rng, txFactory, customerID, opts)...)
	}

	slices.SortStableFunc(transactions, func(a, b models.SalesTransaction) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return Dataset{Inventory: inventory, Transactions: transactions}, nil
}

func customerHistory(rng *rand.Rand, f *SalesTransactionFactory, customerID string, opts DatasetOptions) []models.SalesTransaction {
	p := pickProfile(rng)
	orders := p.ordersMin + rng.Intn(p.ordersMax-p.ordersMin+1)

	horizon := time.Duration(opts.Days) * 24 * time.Hour
	inactive := time.Duration(p.inactiveMin+rng.Intn(p.inactiveMax-p.inactiveMin+1)) * 24 * time.Hour
	last := opts.Now.Add(-min(inactive, horizon))
	first := opts.Now.Add(-horizon)
	if p.segment == "new" {
		first = last
	}

	out := make([]models.SalesTransaction, 0, orders)
	span := last.Sub(first)
	for i := 0; i < orders; i++ {
		at := last
		if i < orders-1 && span > 0 {
			at = first.Add(time.Duration(rng.Int63n(int64(span))))
		}
		out = append(out, f.CreateSalesTransaction(customerID, p.segment, at))
	}
	return out
}
