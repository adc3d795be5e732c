package dataset

import (
	"fmt"
	"sort"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/shoplytics/ecom-insights/internal/entity"
	gerr "github.com/shoplytics/ecom-insights/internal/errors"
)

// Prepare denormalizes the raw tables into one sales record per order item
// and applies the period filter. Individual items whose order, product or
// customer is missing from the reference tables are dropped (and counted);
// the whole preparation fails with gerr.ErrDataIntegrity only when the
// majority of items cannot be joined, which signals mismatched datasets.
//
// Output order is ascending by (order date, order id, product id) so that
// downstream aggregation and test fixtures are deterministic.
func Prepare(tables *entity.RawTables, f entity.SalesFilter) ([]entity.SalesRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	orders := make(map[string]*entity.Order, len(tables.Orders))
	for i := range tables.Orders {
		orders[tables.Orders[i].ID] = &tables.Orders[i]
	}
	categories := make(map[string]string, len(tables.Products))
	for _, p := range tables.Products {
		categories[p.ID] = p.Category
	}
	states := make(map[string]string, len(tables.Customers))
	for _, c := range tables.Customers {
		states[c.ID] = c.State
	}
	reviews := reviewPerOrder(tables.Reviews)

	var (
		records []entity.SalesRecord
		dropped int
	)
	for _, it := range tables.Items {
		ord, ok := orders[it.OrderID]
		if !ok {
			dropped++
			continue
		}
		category, ok := categories[it.ProductID]
		if !ok {
			dropped++
			continue
		}
		state, ok := states[ord.CustomerID]
		if !ok {
			dropped++
			continue
		}

		rec := entity.SalesRecord{
			OrderID:         ord.ID,
			OrderDate:       ord.PurchasedAt,
			Year:            ord.PurchasedAt.Year(),
			Month:           int(ord.PurchasedAt.Month()),
			CustomerState:   state,
			ProductCategory: category,
			ProductID:       it.ProductID,
			Price:           it.Price,
			Freight:         it.Freight,
			ReviewScore:     reviewScore(reviews, ord.ID),
			DeliveryDays:    deliveryDays(ord),
			Status:          ord.Status,
		}
		if !matches(rec, f) {
			continue
		}
		records = append(records, rec)
	}

	if total := len(tables.Items); total > 0 && dropped*2 > total {
		return nil, fmt.Errorf("%w: %d of %d order items unmatched", gerr.ErrDataIntegrity, dropped, total)
	}
	if dropped > 0 {
		slog.Default().Warn("dropped unmatched order items", slog.Int("dropped", dropped), slog.Int("total", len(tables.Items)))
	}
	logPaymentGap(tables, records)

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.Before(b.OrderDate)
		}
		if a.OrderID != b.OrderID {
			return a.OrderID < b.OrderID
		}
		return a.ProductID < b.ProductID
	})
	return records, nil
}

// reviewPerOrder keeps at most one review per order. Scores outside 1..5
// are treated as absent; when an order has several reviews, the one with
// the lowest review id wins.
func reviewPerOrder(reviews []entity.Review) map[string]entity.Review {
	m := make(map[string]entity.Review, len(reviews))
	for _, r := range reviews {
		if r.Score < 1 || r.Score > 5 {
			continue
		}
		if cur, ok := m[r.OrderID]; ok && cur.ID <= r.ID {
			continue
		}
		m[r.OrderID] = r
	}
	return m
}

func reviewScore(reviews map[string]entity.Review, orderID string) *int {
	r, ok := reviews[orderID]
	if !ok {
		return nil
	}
	score := r.Score
	return &score
}

// deliveryDays computes the whole-day delivery duration; nil when the order
// has no delivery timestamp or the timestamps are inconsistent.
func deliveryDays(ord *entity.Order) *int {
	if ord.DeliveredAt == nil || ord.PurchasedAt.IsZero() {
		return nil
	}
	days := int(ord.DeliveredAt.Sub(ord.PurchasedAt) / (24 * time.Hour))
	if days < 0 {
		slog.Default().Warn("order delivered before purchase, ignoring delivery duration", slog.String("order_id", ord.ID))
		return nil
	}
	return &days
}

// matches applies the filters in order: status, year, month.
func matches(rec entity.SalesRecord, f entity.SalesFilter) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.Year != nil && rec.Year != *f.Year {
		return false
	}
	if f.Month != nil && rec.Month != *f.Month {
		return false
	}
	return true
}

// logPaymentGap reports the difference between recorded payments and item
// totals for the included orders. Payment values legitimately differ from
// item sums (fees, discounts); the gap is logged for observability and
// never reconciled into revenue.
func logPaymentGap(tables *entity.RawTables, records []entity.SalesRecord) {
	if len(records) == 0 || len(tables.Payments) == 0 {
		return
	}
	included := make(map[string]struct{}, len(records))
	itemTotal := decimal.Zero
	for _, r := range records {
		included[r.OrderID] = struct{}{}
		itemTotal = itemTotal.Add(r.Price).Add(r.Freight)
	}
	paid := decimal.Zero
	for _, p := range tables.Payments {
		if _, ok := included[p.OrderID]; ok {
			paid = paid.Add(p.Value)
		}
	}
	slog.Default().Debug("payment totals vs item totals",
		slog.String("payments", paid.StringFixed(2)),
		slog.String("items_with_freight", itemTotal.StringFixed(2)),
		slog.String("gap", paid.Sub(itemTotal).StringFixed(2)),
	)
}
