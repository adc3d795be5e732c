package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetricsReport is the immutable result of one metrics computation for a
// single reporting period. It is created fresh per request and never
// mutated after construction; callers cache it externally by ReportKey.
type MetricsReport struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Filter      SalesFilter
	CompareYear *int

	Revenue      RevenueBlock
	Products     []CategoryMetric
	Geography    []StateMetric
	Satisfaction SatisfactionBlock
	Delivery     DeliveryBlock

	// Comparison is nil when no previous period was supplied. Callers must
	// check for presence before reading it.
	Comparison *ComparisonBlock
}

// RevenueBlock holds period revenue totals and the monthly trend series.
type RevenueBlock struct {
	TotalRevenue  decimal.Decimal
	TotalOrders   int
	AvgOrderValue decimal.Decimal
	// MonthlyRevenue always has 12 entries, January..December, zero-filled
	// for months absent from the data.
	MonthlyRevenue []MonthRevenue
	// GrowthRate is (current-previous)/previous as a fraction; nil when no
	// comparison period was supplied or the previous total is zero.
	GrowthRate *float64
	// AvgMonthlyGrowth is the mean of month-over-month revenue growth
	// fractions across the months with data in the period; nil when fewer
	// than two months have data or every pair starts from zero revenue.
	AvgMonthlyGrowth *float64
}

// MonthRevenue is one point of the monthly revenue series.
type MonthRevenue struct {
	Month   int
	Revenue decimal.Decimal
}

// CategoryMetric aggregates revenue per product category.
type CategoryMetric struct {
	Category string
	Revenue  decimal.Decimal
	Orders   int
	// Share is category revenue over total revenue; zero when the period
	// total is zero.
	Share decimal.Decimal
}

// StateMetric aggregates revenue per customer state.
type StateMetric struct {
	State         string
	Revenue       decimal.Decimal
	Orders        int
	AvgOrderValue decimal.Decimal
	// Share is state revenue over total revenue; zero when the period
	// total is zero.
	Share decimal.Decimal
}

// SatisfactionBlock summarizes review scores. Records without a review are
// excluded from every figure, not treated as score zero.
type SatisfactionBlock struct {
	// AvgReviewScore is nil when no record in the period carries a review.
	AvgReviewScore *float64
	// Distribution always has 5 entries, scores 1..5, zero-filled.
	Distribution []ScoreCount
	// PctHighSatisfaction is count(score>=4)/count(score present), in [0,1];
	// zero when no reviews are present.
	PctHighSatisfaction float64
	ReviewedCount       int
}

// ScoreCount is the number of reviewed records with one score value.
type ScoreCount struct {
	Score int
	Count int
}

// DeliveryBlock summarizes delivery durations and satisfaction by delivery
// speed. Records without a delivery duration are excluded from all buckets.
type DeliveryBlock struct {
	// AvgDeliveryDays is nil when no record in the period has a delivery
	// duration.
	AvgDeliveryDays *float64
	// Buckets always has 3 entries: fast (0-3 days), standard (4-7 days),
	// slow (8+ days).
	Buckets []DeliveryBucket
}

// DeliveryBucket is one delivery-speed bucket with its review average.
type DeliveryBucket struct {
	Name  string
	Label string
	Count int
	// AvgReviewScore is the mean score over bucket records that also carry
	// a review; nil when none do.
	AvgReviewScore *float64
}

// ComparisonBlock holds period-over-period deltas. It is entirely absent
// from the report when no previous period was supplied.
type ComparisonBlock struct {
	Revenue       MetricDelta
	AvgOrderValue MetricDelta
	Orders        MetricDelta
	DeliveryDays  MetricDelta
}

// MetricDelta is one current-vs-previous measurement.
type MetricDelta struct {
	Current  decimal.Decimal
	Previous decimal.Decimal
	Diff     decimal.Decimal
	// ChangeRate is (current-previous)/previous as a fraction; nil when the
	// previous value is zero, signaling "growth undefined".
	ChangeRate *float64
}
