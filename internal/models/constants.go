package models

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Weight orders risk levels for ranking (high=3, medium=2, low=1).
func (r RiskLevel) Weight() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	default:
		return 1
	}
}

type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentRegular Segment = "regular"
	SegmentVIP     Segment = "vip"
	SegmentAtRisk  Segment = "at_risk"
	SegmentChurned Segment = "churned"
)

// Segments lists every segment in reporting order.
var Segments = []Segment{SegmentNew, SegmentRegular, SegmentVIP, SegmentAtRisk, SegmentChurned}

type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencySoon      Urgency = "soon"
	UrgencyPlanned   Urgency = "planned"
)

// Rank orders urgencies, immediate highest.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyImmediate:
		return 3
	case UrgencySoon:
		return 2
	default:
		return 1
	}
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	ActionReEngagement  = "re-engagement email with discount"
	ActionBundleDeal    = "bundle deal offer"
	ActionLoyaltyInvite = "loyalty program invitation"
)
