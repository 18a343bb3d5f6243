package analytics

import (
	"fmt"

	"github.com/chrisdamba/retailiq/internal/models"
)

const (
	reactivationTargetMinLTV = 200.0
	loyaltyMinLTV            = 300.0
	reEngagementAfterDays    = 60
	bundleDealMaxOrderValue  = 50.0
)

// RetentionReport builds the campaign targeting lists consumed by the
// marketing dispatcher.
func (c *CustomerIntelligence) RetentionReport(transactions []models.SalesTransaction) models.RetentionReport {
	now := c.clock.Now()
	customers := c.analyzeAll(transactions, now)

	atRisk := make([]models.CustomerMetrics, 0)
	reactivation := make([]models.CustomerMetrics, 0)
	loyalty := make([]models.CustomerMetrics, 0)
	for _, m := range customers {
		if m.ChurnRisk == models.RiskHigh && m.Segment != models.SegmentChurned {
			atRisk = append(atRisk, m)
		}
		if m.Segment == models.SegmentChurned && m.LifetimeValue > reactivationTargetMinLTV {
			reactivation = append(reactivation, m)
		}
		if m.Segment == models.SegmentRegular && m.LifetimeValue > loyaltyMinLTV {
			loyalty = append(loyalty, m)
		}
	}
	sortedDesc(atRisk, byLifetimeValue)
	sortedDesc(reactivation, byLifetimeValue)
	sortedDesc(loyalty, func(m models.CustomerMetrics) float64 { return m.EngagementScore })

	actions := make([]models.RecommendedAction, 0, len(atRisk)+len(reactivation)+len(loyalty))
	seen := make(map[string]bool)
	for _, list := range [][]models.CustomerMetrics{atRisk, reactivation, loyalty} {
		for _, m := range list {
			if seen[m.CustomerID] {
				continue
			}
			seen[m.CustomerID] = true
			actions = append(actions, models.RecommendedAction{
				CustomerID:    m.CustomerID,
				Action:        RecommendAction(m),
				Priority:      PriorityFor(m.LifetimeValue),
				LifetimeValue: m.LifetimeValue,
			})
		}
	}

	return models.RetentionReport{
		GeneratedAt:          now.UnixMilli(),
		AtRiskCustomers:      atRisk,
		ReactivationTargets:  reactivation,
		LoyaltyOpportunities: loyalty,
		RecommendedActions:   actions,
	}
}

// RecommendAction picks the campaign for a customer, first matching rule wins.
func RecommendAction(m models.CustomerMetrics) string {
	switch {
	case m.DaysSinceLastPurchase > reEngagementAfterDays:
		return models.ActionReEngagement
	case m.AverageOrderValue < bundleDealMaxOrderValue:
		return models.ActionBundleDeal
	case len(m.PreferredCategories) > 0:
		return fmt.Sprintf("recommend new %s products", m.PreferredCategories[0].Category)
	default:
		return models.ActionLoyaltyInvite
	}
}

func PriorityFor(lifetimeValue float64) models.Priority {
	switch {
	case lifetimeValue > 500:
		return models.PriorityHigh
	case lifetimeValue > 200:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
