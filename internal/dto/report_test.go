package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

func TestConvertReport(t *testing.T) {
	year := 2023
	growth := 0.25
	monthly := 0.05
	m := &entity.MetricsReport{
		ID:          uuid.New(),
		GeneratedAt: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		Filter:      entity.SalesFilter{Year: &year, Status: entity.OrderStatusDelivered},
		Revenue: entity.RevenueBlock{
			TotalRevenue:  decimal.NewFromInt(1_500_000),
			TotalOrders:   1000,
			AvgOrderValue: decimal.NewFromInt(1500),
			MonthlyRevenue: []entity.MonthRevenue{
				{Month: 1, Revenue: decimal.NewFromInt(1_500_000)},
			},
			GrowthRate:       &growth,
			AvgMonthlyGrowth: &monthly,
		},
		Products: []entity.CategoryMetric{
			{Category: "home_appliances", Revenue: decimal.NewFromInt(900_000), Orders: 600, Share: decimal.NewFromFloat(0.6)},
		},
		Geography: []entity.StateMetric{
			{State: "CA", Revenue: decimal.NewFromInt(900_000), Orders: 600, AvgOrderValue: decimal.NewFromInt(1500), Share: decimal.NewFromFloat(0.6)},
		},
		Comparison: &entity.ComparisonBlock{
			Revenue: entity.MetricDelta{
				Current:    decimal.NewFromInt(1_500_000),
				Previous:   decimal.NewFromInt(1_200_000),
				Diff:       decimal.NewFromInt(300_000),
				ChangeRate: &growth,
			},
		},
	}

	r := ConvertReport(m)
	require.NotNil(t, r)

	assert.Equal(t, m.ID.String(), r.ID)
	assert.Equal(t, "2023-06-01T12:00:00Z", r.GeneratedAt)
	assert.Equal(t, "delivered", r.Status)

	assert.Equal(t, "1500000.00", r.Revenue.TotalRevenue)
	assert.Equal(t, "$1.5M", r.Revenue.TotalRevenueCompact)
	require.NotNil(t, r.Revenue.GrowthRatePct)
	assert.InDelta(t, 25.0, *r.Revenue.GrowthRatePct, 1e-9)
	require.NotNil(t, r.Revenue.AvgMonthlyGrowthPct)
	assert.InDelta(t, 5.0, *r.Revenue.AvgMonthlyGrowthPct, 1e-9)
	assert.Equal(t, "↑ 25.00%", r.Revenue.Trend)

	require.Len(t, r.Products, 1)
	assert.Equal(t, "Home Appliances", r.Products[0].Label)
	assert.InDelta(t, 60.0, r.Products[0].SharePct, 1e-9)

	require.Len(t, r.Geography, 1)
	assert.InDelta(t, 60.0, r.Geography[0].SharePct, 1e-9)

	require.NotNil(t, r.Comparison)
	assert.Equal(t, "300000.00", r.Comparison.Revenue.Diff)
}

func TestConvertReportNoComparison(t *testing.T) {
	m := &entity.MetricsReport{ID: uuid.New(), GeneratedAt: time.Now()}
	r := ConvertReport(m)
	require.NotNil(t, r)
	assert.Nil(t, r.Comparison)
	assert.Nil(t, r.Revenue.GrowthRatePct)
	assert.Equal(t, "N/A", r.Revenue.Trend)
}

func TestConvertReportNil(t *testing.T) {
	assert.Nil(t, ConvertReport(nil))
}
