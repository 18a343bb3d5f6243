package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// ledger accumulates currency amounts without float drift.
type ledger struct {
	sum decimal.Decimal
}

func (l *ledger) add(v float64) {
	l.sum = l.sum.Add(decimal.NewFromFloat(v))
}

func (l ledger) float() float64 {
	f, _ := l.sum.Float64()
	return f
}

// ratio returns num/den, or 0 when den is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// percentOf returns part/whole*100, or 0 when whole is zero.
func percentOf(part, whole float64) float64 {
	return ratio(part, whole) * 100
}

// percentChange returns (current-previous)/previous*100, or 0 when previous is zero.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// sortedDesc stable-sorts s by key, highest first.
func sortedDesc[T any, K cmp.Ordered](s []T, key func(T) K) {
	slices.SortStableFunc(s, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
