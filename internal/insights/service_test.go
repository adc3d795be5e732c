package insights

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/ecom-insights/internal/cache"
	"github.com/shoplytics/ecom-insights/internal/entity"
	gerr "github.com/shoplytics/ecom-insights/internal/errors"
)

type memSource struct {
	tables *entity.RawTables
	loads  int
}

func (m *memSource) LoadTables(ctx context.Context) (*entity.RawTables, error) {
	m.loads++
	return m.tables, nil
}

func fixtureSource() *memSource {
	purchase := func(y, mo, d int) time.Time {
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	}
	return &memSource{tables: &entity.RawTables{
		Orders: []entity.Order{
			{ID: "o1", CustomerID: "c1", Status: entity.OrderStatusDelivered, PurchasedAt: purchase(2023, 1, 10)},
			{ID: "o2", CustomerID: "c1", Status: entity.OrderStatusDelivered, PurchasedAt: purchase(2022, 3, 2)},
			{ID: "o3", CustomerID: "c1", Status: entity.OrderStatusCanceled, PurchasedAt: purchase(2023, 5, 1)},
		},
		Items: []entity.OrderItem{
			{OrderID: "o1", ProductID: "p1", Price: decimal.NewFromInt(300)},
			{OrderID: "o2", ProductID: "p1", Price: decimal.NewFromInt(200)},
			{OrderID: "o3", ProductID: "p1", Price: decimal.NewFromInt(99)},
		},
		Products:  []entity.Product{{ID: "p1", Category: "toys"}},
		Customers: []entity.Customer{{ID: "c1", State: "CA"}},
	}}
}

func TestGetReportWithComparison(t *testing.T) {
	src := fixtureSource()
	svc := New(&Config{DefaultStatus: "delivered"}, src, cache.NewReports())

	year, compare := 2023, 2022
	m, err := svc.GetReport(context.Background(), entity.ReportRequest{
		Filter:      entity.SalesFilter{Year: &year},
		CompareYear: &compare,
	})
	require.NoError(t, err)

	assert.True(t, m.Revenue.TotalRevenue.Equal(decimal.NewFromInt(300)), "canceled order excluded by default status")
	require.NotNil(t, m.Comparison)
	require.NotNil(t, m.Revenue.GrowthRate)
	assert.InDelta(t, 0.5, *m.Revenue.GrowthRate, 1e-9)
}

func TestGetReportCachesByFilterTuple(t *testing.T) {
	src := fixtureSource()
	svc := New(&Config{}, src, cache.NewReports())

	year := 2023
	req := entity.ReportRequest{Filter: entity.SalesFilter{Year: &year}}

	first, err := svc.GetReport(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.GetReport(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same tuple must hit the cache")
	assert.Equal(t, 1, src.loads, "tables are loaded once per process")

	month := 5
	req.Filter.Month = &month
	third, err := svc.GetReport(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestGetReportInvalidFilter(t *testing.T) {
	svc := New(&Config{}, fixtureSource(), cache.NewReports())

	month := 3
	_, err := svc.GetReport(context.Background(), entity.ReportRequest{
		Filter: entity.SalesFilter{Month: &month},
	})
	assert.ErrorIs(t, err, gerr.ErrInvalidFilter)
}

func TestGetReportEmptyComparisonPeriodStillPresent(t *testing.T) {
	svc := New(&Config{}, fixtureSource(), cache.NewReports())

	year, compare := 2023, 1999
	m, err := svc.GetReport(context.Background(), entity.ReportRequest{
		Filter:      entity.SalesFilter{Year: &year},
		CompareYear: &compare,
	})
	require.NoError(t, err)
	require.NotNil(t, m.Comparison, "supplied comparison year yields a comparison block even with no data")
	assert.Nil(t, m.Revenue.GrowthRate, "growth against an empty previous period is undefined")
}

func TestAvailableYears(t *testing.T) {
	svc := New(&Config{}, fixtureSource(), cache.NewReports())

	years, err := svc.AvailableYears(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2022}, years)
}
