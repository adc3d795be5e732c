package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	gerr "github.com/shoplytics/ecom-insights/internal/errors"
)

// OrderStatus is the lifecycle status of an order as it appears in the
// source dataset.
type OrderStatus string

const (
	OrderStatusCreated     OrderStatus = "created"
	OrderStatusApproved    OrderStatus = "approved"
	OrderStatusInvoiced    OrderStatus = "invoiced"
	OrderStatusProcessing  OrderStatus = "processing"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCanceled    OrderStatus = "canceled"
	OrderStatusUnavailable OrderStatus = "unavailable"
)

// Order represents a row of the orders table.
type Order struct {
	ID          string      `db:"id"`
	CustomerID  string      `db:"customer_id"`
	Status      OrderStatus `db:"status"`
	PurchasedAt time.Time   `db:"purchased_at"`
	DeliveredAt *time.Time  `db:"delivered_at"`
}

// OrderItem represents a row of the order_items table.
type OrderItem struct {
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Price     decimal.Decimal `db:"price"`
	Freight   decimal.Decimal `db:"freight_value"`
}

// Product represents a row of the products table.
type Product struct {
	ID       string `db:"id"`
	Category string `db:"category"`
}

// Customer represents a row of the customers table.
type Customer struct {
	ID    string `db:"id"`
	State string `db:"state"`
}

// Review represents a row of the reviews table. Score is 1..5.
type Review struct {
	ID      string `db:"id"`
	OrderID string `db:"order_id"`
	Score   int    `db:"score"`
}

// Payment represents a row of the payments table. Value may differ from the
// order's item sum because of fees and discounts; it is never reconciled
// into revenue.
type Payment struct {
	OrderID string          `db:"order_id"`
	Value   decimal.Decimal `db:"value"`
}

// RawTables holds the six source datasets materialized in memory. The tables
// are treated as read-only for the process lifetime.
type RawTables struct {
	Orders    []Order
	Items     []OrderItem
	Products  []Product
	Customers []Customer
	Reviews   []Review
	Payments  []Payment
}

// SalesRecord is one denormalized row of the prepared sales dataset: one
// order item enriched with order, customer, product and review data.
// ReviewScore and DeliveryDays are nil when the underlying data is absent,
// never zero-filled.
type SalesRecord struct {
	OrderID         string
	OrderDate       time.Time
	Year            int
	Month           int
	CustomerState   string
	ProductCategory string
	ProductID       string
	Price           decimal.Decimal
	Freight         decimal.Decimal
	ReviewScore     *int
	DeliveryDays    *int
	Status          OrderStatus
}

// SalesFilter narrows the prepared dataset to one reporting period.
// Zero values mean "no filter"; Month requires Year.
type SalesFilter struct {
	Year   *int
	Month  *int
	Status OrderStatus
}

// Validate checks filter consistency. Month without Year or outside 1..12
// is a caller error, not a data error.
func (f SalesFilter) Validate() error {
	if f.Month != nil {
		if f.Year == nil {
			return fmt.Errorf("%w: month filter requires year filter", gerr.ErrInvalidFilter)
		}
		if *f.Month < 1 || *f.Month > 12 {
			return fmt.Errorf("%w: month %d outside 1..12", gerr.ErrInvalidFilter, *f.Month)
		}
	}
	return nil
}

// ReportRequest is one dashboard analysis request: a primary period filter
// plus an optional comparison year.
type ReportRequest struct {
	Filter      SalesFilter
	CompareYear *int
}

// CacheKey is the comparable identity of a report request, used by the
// report cache. Zero fields encode absent filters.
func (r ReportRequest) CacheKey() ReportKey {
	k := ReportKey{Status: r.Filter.Status}
	if r.Filter.Year != nil {
		k.Year = *r.Filter.Year
	}
	if r.Filter.Month != nil {
		k.Month = *r.Filter.Month
	}
	if r.CompareYear != nil {
		k.CompareYear = *r.CompareYear
	}
	return k
}

// ReportKey identifies one computed report by its filter tuple.
type ReportKey struct {
	Year        int
	Month       int
	Status      OrderStatus
	CompareYear int
}
