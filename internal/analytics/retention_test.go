package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/retailiq/internal/models"
)

func ids(customers []models.CustomerMetrics) []string {
	out := make([]string, 0, len(customers))
	for _, m := range customers {
		out = append(out, m.CustomerID)
	}
	return out
}

func TestRetentionReport(t *testing.T) {
	txs := append(portfolio(),
		sale("t7", "c5", daysAgo(10), 200, line("p9", "tools", 2, 200, 30)),
		sale("t8", "c5", daysAgo(5), 200, line("p9", "tools", 2, 200, 30)),
	)

	r := newCustomers().RetentionReport(txs)

	assert.Equal(t, testNow.UnixMilli(), r.GeneratedAt)
	assert.Equal(t, []string{"c3"}, ids(r.AtRiskCustomers))
	assert.Equal(t, []string{"c2"}, ids(r.ReactivationTargets))
	assert.Equal(t, []string{"c5"}, ids(r.LoyaltyOpportunities))

	require.Len(t, r.RecommendedActions, 3)
	assert.Equal(t, models.RecommendedAction{
		CustomerID:    "c3",
		Action:        models.ActionReEngagement,
		Priority:      models.PriorityLow,
		LifetimeValue: 150,
	}, r.RecommendedActions[0])
	assert.Equal(t, "c2", r.RecommendedActions[1].CustomerID)
	assert.Equal(t, models.PriorityHigh, r.RecommendedActions[1].Priority)
	assert.Equal(t, "c5", r.RecommendedActions[2].CustomerID)
	assert.Equal(t, "recommend new tools products", r.RecommendedActions[2].Action)
	assert.Equal(t, models.PriorityMedium, r.RecommendedActions[2].Priority)
}

func TestRetentionReport_OneActionPerCustomer(t *testing.T) {
	// slow-cadence regular customer: high churn risk yet loyal enough to invite
	txs := []models.SalesTransaction{
		sale("t1", "c6", daysAgo(160), 200, line("p1", "flower", 1, 200, 50)),
		sale("t2", "c6", daysAgo(80), 200, line("p1", "flower", 1, 200, 50)),
	}

	r := newCustomers().RetentionReport(txs)

	assert.Equal(t, []string{"c6"}, ids(r.AtRiskCustomers))
	assert.Equal(t, []string{"c6"}, ids(r.LoyaltyOpportunities))
	require.Len(t, r.RecommendedActions, 1)
	assert.Equal(t, models.ActionReEngagement, r.RecommendedActions[0].Action)
}

func TestRetentionReport_Empty(t *testing.T) {
	r := newCustomers().RetentionReport(nil)

	assert.NotNil(t, r.AtRiskCustomers)
	assert.NotNil(t, r.ReactivationTargets)
	assert.NotNil(t, r.LoyaltyOpportunities)
	assert.NotNil(t, r.RecommendedActions)
	assert.Empty(t, r.RecommendedActions)
}

func TestRecommendAction(t *testing.T) {
	withCategory := []models.CategoryPreference{{Category: "edibles", Quantity: 3, Percentage: 100}}
	cases := []struct {
		name string
		m    models.CustomerMetrics
		want string
	}{
		{"lapsed", models.CustomerMetrics{DaysSinceLastPurchase: 61, AverageOrderValue: 10, PreferredCategories: withCategory}, models.ActionReEngagement},
		{"sixty days is not lapsed", models.CustomerMetrics{DaysSinceLastPurchase: 60, AverageOrderValue: 10}, models.ActionBundleDeal},
		{"small baskets", models.CustomerMetrics{AverageOrderValue: 49.99, PreferredCategories: withCategory}, models.ActionBundleDeal},
		{"category affinity", models.CustomerMetrics{AverageOrderValue: 50, PreferredCategories: withCategory}, "recommend new edibles products"},
		{"fallback", models.CustomerMetrics{AverageOrderValue: 80}, models.ActionLoyaltyInvite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RecommendAction(tc.m))
		})
	}
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, models.PriorityHigh, PriorityFor(500.01))
	assert.Equal(t, models.PriorityMedium, PriorityFor(500))
	assert.Equal(t, models.PriorityMedium, PriorityFor(200.01))
	assert.Equal(t, models.PriorityLow, PriorityFor(200))
	assert.Equal(t, models.PriorityLow, PriorityFor(0))
}
