package analytics

import (
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chrisdamba/retailiq/internal/models"
)

const (
	defaultDaysBetweenOrders = 30.0
	preferredCategoryLimit   = 5
	topCustomersLimit        = 20
	reactivationLimit        = 10
	reactivationMinLTV       = 100.0
	retentionWindowDays      = 90
	newCustomerWindowDays    = 30
)

// CustomerIntelligence derives per-customer lifetime value, churn and segment
// metrics, and portfolio rollups over every customer in the log.
type CustomerIntelligence struct {
	clock   Clock
	workers int
}

func NewCustomerIntelligence(cfg models.AnalyticsConfig, clock Clock) *CustomerIntelligence {
	if clock == nil {
		clock = SystemClock
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &CustomerIntelligence{clock: clock, workers: workers}
}

// AnalyzeCustomer computes metrics for customerID. Transactions belonging to
// other customers are ignored, so the full log may be passed.
func (c *CustomerIntelligence) AnalyzeCustomer(customerID string, transactions []models.SalesTransaction) models.CustomerMetrics {
	own := make([]models.SalesTransaction, 0)
	for _, tx := range transactions {
		if tx.CustomerID == customerID {
			own = append(own, tx)
		}
	}
	return analyzeCustomer(customerID, own, c.clock.Now())
}

func analyzeCustomer(customerID string, transactions []models.SalesTransaction, now time.Time) models.CustomerMetrics {
	if len(transactions) == 0 {
		return models.CustomerMetrics{
			CustomerID:          customerID,
			ChurnRisk:           models.RiskLow,
			Segment:             models.SegmentNew,
			PreferredCategories: []models.CategoryPreference{},
		}
	}

	sorted := slices.Clone(transactions)
	slices.SortStableFunc(sorted, func(a, b models.SalesTransaction) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})

	var ltv ledger
	for _, tx := range sorted {
		ltv.add(tx.Total)
	}
	lifetimeValue := ltv.float()
	totalOrders := len(sorted)
	first := sorted[0].Timestamp
	last := sorted[totalOrders-1].Timestamp
	nowMs := now.UnixMilli()

	daysSinceLast := int(math.Floor(float64(nowMs-last) / float64(models.MillisPerDay)))

	avgDaysBetween := defaultDaysBetweenOrders
	if totalOrders >= 2 {
		// mean of consecutive gaps telescopes to the first-to-last span
		avgDaysBetween = float64(last-first) / float64(totalOrders-1) / float64(models.MillisPerDay)
	}

	score := churnScore(avgDaysBetween, daysSinceLast, totalOrders)
	preferred, distinctCategories := preferredCategories(sorted)

	predicted := nowMs + 30*models.MillisPerDay
	if totalOrders >= 2 {
		predicted = last + int64(math.Round(avgDaysBetween*float64(models.MillisPerDay)))
	}

	return models.CustomerMetrics{
		CustomerID:               customerID,
		LifetimeValue:            lifetimeValue,
		TotalOrders:              totalOrders,
		AverageOrderValue:        lifetimeValue / float64(totalOrders),
		FirstPurchaseDate:        first,
		LastPurchaseDate:         last,
		DaysSinceLastPurchase:    daysSinceLast,
		AverageDaysBetweenOrders: avgDaysBetween,
		ChurnRisk:                churnRisk(score),
		ChurnScore:               score,
		PreferredCategories:      preferred,
		Segment:                  segmentFor(daysSinceLast, totalOrders, lifetimeValue),
		PredictedNextPurchase:    predicted,
		EngagementScore:          engagementScore(first, last, totalOrders, daysSinceLast, distinctCategories),
	}
}

// churnScore weights purchase cadence (40%), recency (40%) and order count
// (20%) into a 0-100 score.
func churnScore(avgDaysBetween float64, daysSinceLast, totalOrders int) float64 {
	cadence := math.Min(avgDaysBetween/30, 1)
	recency := math.Min(float64(daysSinceLast)/90, 1)
	volume := math.Max(0, 1-float64(totalOrders)/10)
	score := 100 * (0.4*cadence + 0.4*recency + 0.2*volume)
	// only reachable with purchases dated after now
	return math.Max(0, score)
}

func churnRisk(score float64) models.RiskLevel {
	switch {
	case score < 30:
		return models.RiskLow
	case score < 70:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// segmentFor applies the segment rules in priority order; the first match wins.
func segmentFor(daysSinceLast, totalOrders int, lifetimeValue float64) models.Segment {
	switch {
	case daysSinceLast > 180:
		return models.SegmentChurned
	case daysSinceLast > 90:
		return models.SegmentAtRisk
	case totalOrders == 1:
		return models.SegmentNew
	case lifetimeValue > 500 || totalOrders > 10:
		return models.SegmentVIP
	default:
		return models.SegmentRegular
	}
}

func preferredCategories(transactions []models.SalesTransaction) ([]models.CategoryPreference, int) {
	quantities := make(map[string]int)
	var order []string
	var totalQty int
	for _, tx := range transactions {
		for _, item := range tx.Items {
			if _, ok := quantities[item.Category]; !ok {
				order = append(order, item.Category)
			}
			quantities[item.Category] += item.Quantity
			totalQty += item.Quantity
		}
	}

	prefs := make([]models.CategoryPreference, 0, len(order))
	for _, category := range order {
		qty := quantities[category]
		prefs = append(prefs, models.CategoryPreference{
			Category:   category,
			Quantity:   qty,
			Percentage: percentOf(float64(qty), float64(totalQty)),
		})
	}
	sortedDesc(prefs, func(p models.CategoryPreference) int { return p.Quantity })
	return truncate(prefs, preferredCategoryLimit), len(order)
}

func engagementScore(first, last int64, totalOrders, daysSinceLast, distinctCategories int) float64 {
	lifespanDays := math.Max(1, float64(last-first)/float64(models.MillisPerDay))
	orderFrequency := float64(totalOrders) / math.Max(1, lifespanDays/30)
	recencyScore := math.Max(0, 100-float64(daysSinceLast)*2)
	varietyScore := float64(distinctCategories) * 10
	return math.Min(100, orderFrequency*30+recencyScore*0.5+varietyScore)
}

// Aggregate analyzes every distinct customer in the log and rolls the results
// up into portfolio metrics. Customers keep first-seen order.
func (c *CustomerIntelligence) Aggregate(transactions []models.SalesTransaction) models.CustomerIntelligenceAnalytics {
	now := c.clock.Now()
	customers := c.analyzeAll(transactions, now)
	return summarize(customers, now)
}

func (c *CustomerIntelligence) analyzeAll(transactions []models.SalesTransaction, now time.Time) []models.CustomerMetrics {
	index := make(map[string]int)
	var ids []string
	var groups [][]models.SalesTransaction
	for _, tx := range transactions {
		i, ok := index[tx.CustomerID]
		if !ok {
			i = len(ids)
			index[tx.CustomerID] = i
			ids = append(ids, tx.CustomerID)
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], tx)
	}

	results := make([]models.CustomerMetrics, len(ids))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i := range ids {
		i := i
		g.Go(func() error {
			results[i] = analyzeCustomer(ids[i], groups[i], now)
			return nil
		})
	}
	_ = g.Wait() // workers never fail
	return results
}

func summarize(customers []models.CustomerMetrics, now time.Time) models.CustomerIntelligenceAnalytics {
	total := len(customers)
	nowMs := now.UnixMilli()
	newSince := nowMs - newCustomerWindowDays*models.MillisPerDay

	segmentCounts := make(map[models.Segment]int)
	var distribution models.ChurnRiskDistribution
	var ltvSum ledger
	var retained, recent int
	reactivation := make([]models.CustomerMetrics, 0)

	for _, m := range customers {
		ltvSum.add(m.LifetimeValue)
		segmentCounts[m.Segment]++
		switch m.ChurnRisk {
		case models.RiskHigh:
			distribution.High++
		case models.RiskMedium:
			distribution.Medium++
		default:
			distribution.Low++
		}
		if m.Segment != models.SegmentChurned && m.DaysSinceLastPurchase <= retentionWindowDays {
			retained++
		}
		if m.FirstPurchaseDate >= newSince {
			recent++
		}
		if m.Segment == models.SegmentAtRisk && m.LifetimeValue > reactivationMinLTV {
			reactivation = append(reactivation, m)
		}
	}

	segments := make([]models.SegmentCount, 0, len(models.Segments))
	for _, s := range models.Segments {
		segments = append(segments, models.SegmentCount{
			Segment:    s,
			Count:      segmentCounts[s],
			Percentage: percentOf(float64(segmentCounts[s]), float64(total)),
		})
	}

	top := slices.Clone(customers)
	sortedDesc(top, byLifetimeValue)
	sortedDesc(reactivation, byLifetimeValue)

	return models.CustomerIntelligenceAnalytics{
		GeneratedAt:               nowMs,
		TotalCustomers:            total,
		AverageLifetimeValue:      ratio(ltvSum.float(), float64(total)),
		ChurnRate:                 percentOf(float64(segmentCounts[models.SegmentChurned]), float64(total)),
		RetentionRate:             percentOf(float64(retained), float64(total)),
		NewCustomerRate:           percentOf(float64(recent), float64(total)),
		CustomerSegments:          segments,
		ChurnRiskDistribution:     distribution,
		TopCustomers:              truncate(top, topCustomersLimit),
		ReactivationOpportunities: truncate(reactivation, reactivationLimit),
		Customers:                 nonNil(customers),
	}
}

func byLifetimeValue(m models.CustomerMetrics) float64 { return m.LifetimeValue }

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
