package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

// Delivery-speed bucket boundaries, inclusive. A zero-day delivery falls in
// the fast bucket.
const (
	fastMaxDays     = 3
	standardMaxDays = 7
)

// Compute aggregates the prepared sales records into a metrics report.
// previous may be nil; the comparison block and growth rate are then left
// absent. The computation is pure and total: an empty period yields a
// zeroed report, never an error.
func Compute(current, previous []entity.SalesRecord) *entity.MetricsReport {
	m := &entity.MetricsReport{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
	}

	cur := aggregate(current)
	m.Revenue = entity.RevenueBlock{
		TotalRevenue:     cur.revenue,
		TotalOrders:      cur.orders,
		AvgOrderValue:    cur.aov,
		MonthlyRevenue:   monthlySeries(current),
		AvgMonthlyGrowth: avgMonthlyGrowth(current),
	}
	m.Products = productMetrics(current, cur.revenue)
	m.Geography = stateMetrics(current, cur.revenue)
	m.Satisfaction = satisfactionBlock(current)
	m.Delivery = deliveryBlock(current)

	if previous == nil {
		return m
	}

	prev := aggregate(previous)
	m.Revenue.GrowthRate = changeRate(cur.revenue, prev.revenue)
	m.Comparison = &entity.ComparisonBlock{
		Revenue:       delta(cur.revenue, prev.revenue),
		AvgOrderValue: delta(cur.aov, prev.aov),
		Orders:        delta(decimal.NewFromInt(int64(cur.orders)), decimal.NewFromInt(int64(prev.orders))),
		DeliveryDays:  delta(avgAsDecimal(cur.avgDeliveryDays), avgAsDecimal(prev.avgDeliveryDays)),
	}
	return m
}

// aggregates holds the per-period totals shared between the primary report
// and the comparison block.
type aggregates struct {
	revenue         decimal.Decimal
	orders          int
	aov             decimal.Decimal
	avgDeliveryDays *float64
}

func aggregate(records []entity.SalesRecord) aggregates {
	a := aggregates{revenue: decimal.Zero, aov: decimal.Zero}
	seen := make(map[string]struct{})
	daysSum, daysCount := 0, 0
	for _, r := range records {
		a.revenue = a.revenue.Add(r.Price)
		seen[r.OrderID] = struct{}{}
		if r.DeliveryDays != nil {
			daysSum += *r.DeliveryDays
			daysCount++
		}
	}
	a.orders = len(seen)
	if a.orders > 0 {
		a.aov = a.revenue.Div(decimal.NewFromInt(int64(a.orders)))
	}
	if daysCount > 0 {
		avg := float64(daysSum) / float64(daysCount)
		a.avgDeliveryDays = &avg
	}
	return a
}

// monthlySeries groups revenue by month over a fixed January..December key
// space, zero-filled so trend charts never silently skip months.
func monthlySeries(records []entity.SalesRecord) []entity.MonthRevenue {
	byMonth := make(map[int]decimal.Decimal, 12)
	for _, r := range records {
		byMonth[r.Month] = byMonth[r.Month].Add(r.Price)
	}
	series := make([]entity.MonthRevenue, 12)
	for month := 1; month <= 12; month++ {
		rev, ok := byMonth[month]
		if !ok {
			rev = decimal.Zero
		}
		series[month-1] = entity.MonthRevenue{Month: month, Revenue: rev}
	}
	return series
}

// avgMonthlyGrowth averages month-over-month revenue growth across the
// months that actually carry data, so a gap in the calendar is a single
// step rather than a drop to zero and back. Pairs with a zero starting
// month are skipped per the changeRate policy.
func avgMonthlyGrowth(records []entity.SalesRecord) *float64 {
	byMonth := make(map[int]decimal.Decimal, 12)
	for _, r := range records {
		byMonth[r.Month] = byMonth[r.Month].Add(r.Price)
	}
	months := make([]int, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Ints(months)

	sum, pairs := 0.0, 0
	for i := 1; i < len(months); i++ {
		prev := byMonth[months[i-1]]
		if prev.IsZero() {
			continue
		}
		rate, _ := byMonth[months[i]].Sub(prev).Div(prev).Float64()
		sum += rate
		pairs++
	}
	if pairs == 0 {
		return nil
	}
	avg := sum / float64(pairs)
	return &avg
}

func productMetrics(records []entity.SalesRecord, total decimal.Decimal) []entity.CategoryMetric {
	type agg struct {
		revenue decimal.Decimal
		orders  map[string]struct{}
	}
	byCategory := make(map[string]*agg)
	for _, r := range records {
		a, ok := byCategory[r.ProductCategory]
		if !ok {
			a = &agg{revenue: decimal.Zero, orders: make(map[string]struct{})}
			byCategory[r.ProductCategory] = a
		}
		a.revenue = a.revenue.Add(r.Price)
		a.orders[r.OrderID] = struct{}{}
	}

	result := make([]entity.CategoryMetric, 0, len(byCategory))
	for category, a := range byCategory {
		share := decimal.Zero
		if total.GreaterThan(decimal.Zero) {
			share = a.revenue.Div(total)
		}
		result = append(result, entity.CategoryMetric{
			Category: category,
			Revenue:  a.revenue,
			Orders:   len(a.orders),
			Share:    share,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Revenue.Equal(result[j].Revenue) {
			return result[i].Revenue.GreaterThan(result[j].Revenue)
		}
		return result[i].Category < result[j].Category
	})
	return result
}

func stateMetrics(records []entity.SalesRecord, total decimal.Decimal) []entity.StateMetric {
	type agg struct {
		revenue decimal.Decimal
		orders  map[string]struct{}
	}
	byState := make(map[string]*agg)
	for _, r := range records {
		a, ok := byState[r.CustomerState]
		if !ok {
			a = &agg{revenue: decimal.Zero, orders: make(map[string]struct{})}
			byState[r.CustomerState] = a
		}
		a.revenue = a.revenue.Add(r.Price)
		a.orders[r.OrderID] = struct{}{}
	}

	result := make([]entity.StateMetric, 0, len(byState))
	for state, a := range byState {
		aov := decimal.Zero
		if n := len(a.orders); n > 0 {
			aov = a.revenue.Div(decimal.NewFromInt(int64(n)))
		}
		share := decimal.Zero
		if total.GreaterThan(decimal.Zero) {
			share = a.revenue.Div(total)
		}
		result = append(result, entity.StateMetric{
			State:         state,
			Revenue:       a.revenue,
			Orders:        len(a.orders),
			AvgOrderValue: aov,
			Share:         share,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Revenue.Equal(result[j].Revenue) {
			return result[i].Revenue.GreaterThan(result[j].Revenue)
		}
		return result[i].State < result[j].State
	})
	return result
}

func satisfactionBlock(records []entity.SalesRecord) entity.SatisfactionBlock {
	counts := make([]int, 6) // index 1..5
	sum, reviewed, high := 0, 0, 0
	for _, r := range records {
		if r.ReviewScore == nil {
			continue
		}
		score := *r.ReviewScore
		if score < 1 || score > 5 {
			continue
		}
		counts[score]++
		sum += score
		reviewed++
		if score >= 4 {
			high++
		}
	}

	b := entity.SatisfactionBlock{
		Distribution:  make([]entity.ScoreCount, 5),
		ReviewedCount: reviewed,
	}
	for score := 1; score <= 5; score++ {
		b.Distribution[score-1] = entity.ScoreCount{Score: score, Count: counts[score]}
	}
	if reviewed > 0 {
		avg := float64(sum) / float64(reviewed)
		b.AvgReviewScore = &avg
		b.PctHighSatisfaction = float64(high) / float64(reviewed)
	}
	return b
}

func deliveryBlock(records []entity.SalesRecord) entity.DeliveryBlock {
	type bucket struct {
		name, label string
		count       int
		scoreSum    int
		scored      int
	}
	buckets := []bucket{
		{name: "fast", label: "1-3 days"},
		{name: "standard", label: "4-7 days"},
		{name: "slow", label: "8+ days"},
	}
	daysSum, daysCount := 0, 0
	for _, r := range records {
		if r.DeliveryDays == nil {
			continue
		}
		days := *r.DeliveryDays
		daysSum += days
		daysCount++

		idx := 2
		switch {
		case days <= fastMaxDays:
			idx = 0
		case days <= standardMaxDays:
			idx = 1
		}
		buckets[idx].count++
		if r.ReviewScore != nil {
			buckets[idx].scoreSum += *r.ReviewScore
			buckets[idx].scored++
		}
	}

	b := entity.DeliveryBlock{Buckets: make([]entity.DeliveryBucket, len(buckets))}
	if daysCount > 0 {
		avg := float64(daysSum) / float64(daysCount)
		b.AvgDeliveryDays = &avg
	}
	for i, bk := range buckets {
		out := entity.DeliveryBucket{Name: bk.name, Label: bk.label, Count: bk.count}
		if bk.scored > 0 {
			avg := float64(bk.scoreSum) / float64(bk.scored)
			out.AvgReviewScore = &avg
		}
		b.Buckets[i] = out
	}
	return b
}

func delta(current, previous decimal.Decimal) entity.MetricDelta {
	return entity.MetricDelta{
		Current:    current,
		Previous:   previous,
		Diff:       current.Sub(previous),
		ChangeRate: changeRate(current, previous),
	}
}

// changeRate returns (current-previous)/previous as a fraction; nil when the
// previous value is zero so callers see "growth undefined" instead of a
// misleading number.
func changeRate(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	rate, _ := current.Sub(previous).Div(previous).Float64()
	return &rate
}

func avgAsDecimal(avg *float64) decimal.Decimal {
	if avg == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*avg)
}
