package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/retailiq/internal/models"
)

func newCustomers() *CustomerIntelligence {
	return NewCustomerIntelligence(testConfig(), FixedClock(testNow))
}

// portfolio returns one customer per interesting segment:
// c1 regular, c2 churned, c3 at risk, c4 new.
func portfolio() []models.SalesTransaction {
	return []models.SalesTransaction{
		sale("t1", "c1", daysAgo(60), 100, line("p1", "flower", 1, 100, 40)),
		sale("t2", "c2", daysAgo(200), 1000, line("p2", "edibles", 4, 1000, 100)),
		sale("t3", "c1", daysAgo(30), 100, line("p1", "flower", 1, 100, 40)),
		sale("t4", "c3", daysAgo(100), 150, line("p3", "gear", 1, 150, 60)),
		sale("t5", "c4", daysAgo(2), 50, line("p1", "flower", 1, 50, 20)),
		sale("t6", "c1", daysAgo(0), 100, line("p1", "flower", 1, 100, 40)),
	}
}

func TestAnalyzeCustomer_NoTransactions(t *testing.T) {
	m := newCustomers().AnalyzeCustomer("ghost", nil)

	assert.Equal(t, "ghost", m.CustomerID)
	assert.Zero(t, m.LifetimeValue)
	assert.Zero(t, m.TotalOrders)
	assert.Zero(t, m.AverageOrderValue)
	assert.Equal(t, models.SegmentNew, m.Segment)
	assert.Equal(t, models.RiskLow, m.ChurnRisk)
	require.NotNil(t, m.PreferredCategories)
	assert.Empty(t, m.PreferredCategories)
}

func TestAnalyzeCustomer_RegularCustomer(t *testing.T) {
	m := newCustomers().AnalyzeCustomer("c1", portfolio())

	assert.InDelta(t, 300, m.LifetimeValue, 1e-9)
	assert.Equal(t, 3, m.TotalOrders)
	assert.InDelta(t, 100, m.AverageOrderValue, 1e-9)
	assert.Equal(t, 0, m.DaysSinceLastPurchase)
	assert.InDelta(t, 30, m.AverageDaysBetweenOrders, 1e-9)
	assert.InDelta(t, 54, m.ChurnScore, 1e-9)
	assert.Equal(t, models.RiskMedium, m.ChurnRisk)
	assert.Equal(t, models.SegmentRegular, m.Segment)
	assert.Equal(t, daysAgo(60), m.FirstPurchaseDate)
	assert.Equal(t, daysAgo(0), m.LastPurchaseDate)
	assert.Equal(t, daysAgo(-30), m.PredictedNextPurchase)
	assert.InDelta(t, 100, m.EngagementScore, 1e-9)
	require.Len(t, m.PreferredCategories, 1)
	assert.Equal(t, models.CategoryPreference{Category: "flower", Quantity: 3, Percentage: 100}, m.PreferredCategories[0])
}

func TestAnalyzeCustomer_UnsortedInput(t *testing.T) {
	txs := portfolio()
	reversed := make([]models.SalesTransaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		reversed = append(reversed, txs[i])
	}
	c := newCustomers()

	assert.Equal(t, c.AnalyzeCustomer("c1", txs), c.AnalyzeCustomer("c1", reversed))
}

func TestAnalyzeCustomer_SingleOrder(t *testing.T) {
	m := newCustomers().AnalyzeCustomer("c4", portfolio())

	assert.Equal(t, models.SegmentNew, m.Segment)
	assert.InDelta(t, 30, m.AverageDaysBetweenOrders, 1e-9)
	assert.Equal(t, testNow.UnixMilli()+30*models.MillisPerDay, m.PredictedNextPurchase)
	assert.Equal(t, 2, m.DaysSinceLastPurchase)
}

func TestAnalyzeCustomer_ChurnedBeatsVIP(t *testing.T) {
	txs := []models.SalesTransaction{
		sale("t1", "whale", daysAgo(260), 5000),
		sale("t2", "whale", daysAgo(200), 5000),
	}

	m := newCustomers().AnalyzeCustomer("whale", txs)

	assert.InDelta(t, 10000, m.LifetimeValue, 1e-9)
	assert.Equal(t, models.SegmentChurned, m.Segment)
}

func TestChurnScore(t *testing.T) {
	assert.InDelta(t, 100, churnScore(30, 90, 0), 1e-9)
	assert.Equal(t, models.RiskHigh, churnRisk(churnScore(30, 90, 0)))
	assert.InDelta(t, 100, churnScore(45, 400, 0), 1e-9, "components are capped")
	assert.Zero(t, churnScore(0, 0, 12))
}

func TestChurnRisk_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.RiskLevel
	}{
		{0, models.RiskLow},
		{29.99, models.RiskLow},
		{30, models.RiskMedium},
		{69.99, models.RiskMedium},
		{70, models.RiskHigh},
		{100, models.RiskHigh},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.score), func(t *testing.T) {
			assert.Equal(t, tc.want, churnRisk(tc.score))
		})
	}
}

func TestSegmentFor(t *testing.T) {
	cases := []struct {
		name   string
		days   int
		orders int
		ltv    float64
		want   models.Segment
	}{
		{"churned", 181, 20, 10000, models.SegmentChurned},
		{"at risk", 91, 20, 10000, models.SegmentAtRisk},
		{"ninety days is not at risk", 90, 2, 100, models.SegmentRegular},
		{"single order", 10, 1, 900, models.SegmentNew},
		{"vip by value", 10, 2, 500.01, models.SegmentVIP},
		{"vip by orders", 10, 11, 100, models.SegmentVIP},
		{"regular", 10, 10, 500, models.SegmentRegular},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, segmentFor(tc.days, tc.orders, tc.ltv))
		})
	}
}

func TestPreferredCategories_TopFiveByQuantity(t *testing.T) {
	txs := []models.SalesTransaction{
		sale("t1", "c1", daysAgo(3), 10,
			line("a", "a", 1, 1, 0),
			line("b", "b", 5, 1, 0),
			line("c", "c", 2, 1, 0),
		),
		sale("t2", "c1", daysAgo(2), 10,
			line("d", "d", 2, 1, 0),
			line("e", "e", 3, 1, 0),
			line("f", "f", 7, 1, 0),
		),
	}

	prefs, distinct := preferredCategories(txs)

	assert.Equal(t, 6, distinct)
	require.Len(t, prefs, 5)
	got := make([]string, 0, len(prefs))
	for _, p := range prefs {
		got = append(got, p.Category)
	}
	assert.Equal(t, []string{"f", "b", "e", "c", "d"}, got)
	assert.InDelta(t, 35, prefs[0].Percentage, 1e-9)
}

func TestAggregate_Portfolio(t *testing.T) {
	a := newCustomers().Aggregate(portfolio())

	assert.Equal(t, testNow.UnixMilli(), a.GeneratedAt)
	assert.Equal(t, 4, a.TotalCustomers)
	assert.InDelta(t, 375, a.AverageLifetimeValue, 1e-9)
	assert.InDelta(t, 25, a.ChurnRate, 1e-9)
	assert.InDelta(t, 50, a.RetentionRate, 1e-9)
	assert.InDelta(t, 25, a.NewCustomerRate, 1e-9)
	assert.Equal(t, models.ChurnRiskDistribution{Low: 0, Medium: 2, High: 2}, a.ChurnRiskDistribution)

	require.Len(t, a.CustomerSegments, len(models.Segments))
	counts := make(map[models.Segment]int)
	for _, s := range a.CustomerSegments {
		counts[s.Segment] = s.Count
	}
	assert.Equal(t, map[models.Segment]int{
		models.SegmentNew:     1,
		models.SegmentRegular: 1,
		models.SegmentVIP:     0,
		models.SegmentAtRisk:  1,
		models.SegmentChurned: 1,
	}, counts)

	top := make([]string, 0, len(a.TopCustomers))
	for _, m := range a.TopCustomers {
		top = append(top, m.CustomerID)
	}
	assert.Equal(t, []string{"c2", "c1", "c3", "c4"}, top)

	require.Len(t, a.ReactivationOpportunities, 1)
	assert.Equal(t, "c3", a.ReactivationOpportunities[0].CustomerID)

	customers := make([]string, 0, len(a.Customers))
	for _, m := range a.Customers {
		customers = append(customers, m.CustomerID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, customers, "first-seen order")
}

func TestAggregate_Empty(t *testing.T) {
	a := newCustomers().Aggregate(nil)

	assert.Zero(t, a.TotalCustomers)
	assert.Zero(t, a.AverageLifetimeValue)
	assert.Zero(t, a.ChurnRate)
	assert.Zero(t, a.RetentionRate)
	assert.Zero(t, a.NewCustomerRate)
	assert.Empty(t, a.TopCustomers)
	assert.Empty(t, a.ReactivationOpportunities)
	assert.NotNil(t, a.Customers)
	for _, s := range a.CustomerSegments {
		assert.Zero(t, s.Percentage)
	}
}

func TestAggregate_WorkerCountDoesNotChangeResult(t *testing.T) {
	var txs []models.SalesTransaction
	for i := 0; i < 50; i++ {
		customer := fmt.Sprintf("c%02d", i%17)
		txs = append(txs, sale(fmt.Sprintf("t%d", i), customer, daysAgo(float64(i*3)), float64(10+i), line("p", "misc", 1, float64(10+i), 1)))
	}
	single := testConfig()
	single.Workers = 1
	many := testConfig()
	many.Workers = 8

	a := NewCustomerIntelligence(single, FixedClock(testNow)).Aggregate(txs)
	b := NewCustomerIntelligence(many, FixedClock(testNow)).Aggregate(txs)

	assert.Equal(t, a, b)
}
