package dto

import (
	"time"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

// Report is the JSON shape of a metrics report. Monetary amounts are
// serialized as strings to keep decimal precision on the wire.
type Report struct {
	ID          string `json:"id"`
	GeneratedAt string `json:"generated_at"`
	Year        *int   `json:"year,omitempty"`
	Month       *int   `json:"month,omitempty"`
	Status      string `json:"status,omitempty"`
	CompareYear *int   `json:"compare_year,omitempty"`

	Revenue      RevenueBlock     `json:"revenue"`
	Products     []CategoryMetric `json:"products"`
	Geography    []StateMetric    `json:"geography"`
	Satisfaction Satisfaction     `json:"satisfaction"`
	Delivery     Delivery         `json:"delivery"`
	Comparison   *Comparison      `json:"comparison,omitempty"`
}

type RevenueBlock struct {
	TotalRevenue        string         `json:"total_revenue"`
	TotalRevenueCompact string         `json:"total_revenue_compact"`
	TotalOrders         int            `json:"total_orders"`
	AvgOrderValue       string         `json:"avg_order_value"`
	MonthlyRevenue      []MonthRevenue `json:"monthly_revenue"`
	// GrowthRatePct is the growth rate as a percentage; absent when growth
	// is undefined for the period.
	GrowthRatePct *float64 `json:"growth_rate_pct,omitempty"`
	// AvgMonthlyGrowthPct is the mean month-over-month revenue growth as a
	// percentage; absent when undefined.
	AvgMonthlyGrowthPct *float64 `json:"avg_monthly_growth_pct,omitempty"`
	Trend               string   `json:"trend"`
}

type MonthRevenue struct {
	Month   int    `json:"month"`
	Revenue string `json:"revenue"`
}

type CategoryMetric struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Revenue  string  `json:"revenue"`
	Orders   int     `json:"orders"`
	SharePct float64 `json:"share_pct"`
}

type StateMetric struct {
	State         string  `json:"state"`
	Revenue       string  `json:"revenue"`
	Orders        int     `json:"orders"`
	AvgOrderValue string  `json:"avg_order_value"`
	SharePct      float64 `json:"share_pct"`
}

type Satisfaction struct {
	AvgReviewScore      *float64     `json:"avg_review_score,omitempty"`
	Distribution        []ScoreCount `json:"distribution"`
	PctHighSatisfaction float64      `json:"pct_high_satisfaction"`
	ReviewedCount       int          `json:"reviewed_count"`
}

type ScoreCount struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type Delivery struct {
	AvgDeliveryDays *float64         `json:"avg_delivery_days,omitempty"`
	Buckets         []DeliveryBucket `json:"buckets"`
}

type DeliveryBucket struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	Count          int      `json:"count"`
	AvgReviewScore *float64 `json:"avg_review_score,omitempty"`
}

type Comparison struct {
	Revenue       MetricDelta `json:"revenue"`
	AvgOrderValue MetricDelta `json:"avg_order_value"`
	Orders        MetricDelta `json:"orders"`
	DeliveryDays  MetricDelta `json:"delivery_days"`
}

type MetricDelta struct {
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Diff     string `json:"diff"`
	// ChangePct is the relative change as a percentage; absent when the
	// previous value is zero.
	ChangePct *float64 `json:"change_pct,omitempty"`
	Trend     string   `json:"trend"`
}

// ConvertReport maps a computed report to its transport shape.
func ConvertReport(m *entity.MetricsReport) *Report {
	if m == nil {
		return nil
	}
	r := &Report{
		ID:          m.ID.String(),
		GeneratedAt: m.GeneratedAt.UTC().Format(time.RFC3339),
		Year:        m.Filter.Year,
		Month:       m.Filter.Month,
		Status:      string(m.Filter.Status),
		CompareYear: m.CompareYear,
		Revenue: RevenueBlock{
			TotalRevenue:        m.Revenue.TotalRevenue.StringFixed(2),
			TotalRevenueCompact: FormatCurrencyCompact(m.Revenue.TotalRevenue),
			TotalOrders:         m.Revenue.TotalOrders,
			AvgOrderValue:       m.Revenue.AvgOrderValue.StringFixed(2),
			MonthlyRevenue:      monthlyRevenue(m.Revenue.MonthlyRevenue),
			GrowthRatePct:       rateToPct(m.Revenue.GrowthRate),
			AvgMonthlyGrowthPct: rateToPct(m.Revenue.AvgMonthlyGrowth),
			Trend:               TrendIndicator(m.Revenue.GrowthRate),
		},
		Products:  categoryMetrics(m.Products),
		Geography: stateMetrics(m.Geography),
		Satisfaction: Satisfaction{
			AvgReviewScore:      m.Satisfaction.AvgReviewScore,
			Distribution:        scoreCounts(m.Satisfaction.Distribution),
			PctHighSatisfaction: m.Satisfaction.PctHighSatisfaction * 100,
			ReviewedCount:       m.Satisfaction.ReviewedCount,
		},
		Delivery: Delivery{
			AvgDeliveryDays: m.Delivery.AvgDeliveryDays,
			Buckets:         deliveryBuckets(m.Delivery.Buckets),
		},
	}
	if m.Comparison != nil {
		r.Comparison = &Comparison{
			Revenue:       metricDelta(m.Comparison.Revenue),
			AvgOrderValue: metricDelta(m.Comparison.AvgOrderValue),
			Orders:        metricDelta(m.Comparison.Orders),
			DeliveryDays:  metricDelta(m.Comparison.DeliveryDays),
		}
	}
	return r
}

func monthlyRevenue(list []entity.MonthRevenue) []MonthRevenue {
	out := make([]MonthRevenue, len(list))
	for i, p := range list {
		out[i] = MonthRevenue{Month: p.Month, Revenue: p.Revenue.StringFixed(2)}
	}
	return out
}

func categoryMetrics(list []entity.CategoryMetric) []CategoryMetric {
	out := make([]CategoryMetric, len(list))
	for i, c := range list {
		out[i] = CategoryMetric{
			Category: c.Category,
			Label:    PrettyCategory(c.Category),
			Revenue:  c.Revenue.StringFixed(2),
			Orders:   c.Orders,
			SharePct: c.Share.InexactFloat64() * 100,
		}
	}
	return out
}

func stateMetrics(list []entity.StateMetric) []StateMetric {
	out := make([]StateMetric, len(list))
	for i, s := range list {
		out[i] = StateMetric{
			State:         s.State,
			Revenue:       s.Revenue.StringFixed(2),
			Orders:        s.Orders,
			AvgOrderValue: s.AvgOrderValue.StringFixed(2),
			SharePct:      s.Share.InexactFloat64() * 100,
		}
	}
	return out
}

func scoreCounts(list []entity.ScoreCount) []ScoreCount {
	out := make([]ScoreCount, len(list))
	for i, s := range list {
		out[i] = ScoreCount{Score: s.Score, Count: s.Count}
	}
	return out
}

func deliveryBuckets(list []entity.DeliveryBucket) []DeliveryBucket {
	out := make([]DeliveryBucket, len(list))
	for i, b := range list {
		out[i] = DeliveryBucket{
			Name:           b.Name,
			Label:          b.Label,
			Count:          b.Count,
			AvgReviewScore: b.AvgReviewScore,
		}
	}
	return out
}

func metricDelta(d entity.MetricDelta) MetricDelta {
	return MetricDelta{
		Current:   d.Current.StringFixed(2),
		Previous:  d.Previous.StringFixed(2),
		Diff:      d.Diff.StringFixed(2),
		ChangePct: rateToPct(d.ChangeRate),
		Trend:     TrendIndicator(d.ChangeRate),
	}
}

func rateToPct(rate *float64) *float64 {
	if rate == nil {
		return nil
	}
	pct := *rate * 100
	return &pct
}
