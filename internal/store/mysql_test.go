package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

func newTestDB(t *testing.T) *MYSQLStore {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := New(context.Background(), Config{
		DSN:         dsn,
		Automigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, table := range []string{"payments", "reviews", "customers", "products", "order_items", "orders"} {
		_, err = db.db.ExecContext(context.Background(), "DELETE FROM "+table)
		require.NoError(t, err)
	}
	return db
}

func TestInsertAndLoadTables(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	delivered := time.Date(2023, 1, 13, 9, 0, 0, 0, time.UTC)
	seed := &entity.RawTables{
		Orders: []entity.Order{
			{ID: "o1", CustomerID: "c1", Status: entity.OrderStatusDelivered, PurchasedAt: time.Date(2023, 1, 10, 14, 30, 0, 0, time.UTC), DeliveredAt: &delivered},
			{ID: "o2", CustomerID: "c2", Status: entity.OrderStatusShipped, PurchasedAt: time.Date(2023, 2, 5, 8, 0, 0, 0, time.UTC)},
		},
		Items: []entity.OrderItem{
			{OrderID: "o1", ProductID: "p1", Price: decimal.NewFromFloat(100.50), Freight: decimal.NewFromFloat(12.30)},
			{OrderID: "o2", ProductID: "p2", Price: decimal.NewFromFloat(49.99)},
		},
		Products:  []entity.Product{{ID: "p1", Category: "toys"}, {ID: "p2", Category: "books"}},
		Customers: []entity.Customer{{ID: "c1", State: "CA"}, {ID: "c2", State: "NY"}},
		Reviews:   []entity.Review{{ID: "r1", OrderID: "o1", Score: 5}},
		Payments:  []entity.Payment{{OrderID: "o1", Value: decimal.NewFromFloat(112.80)}},
	}
	require.NoError(t, db.InsertTables(ctx, seed))

	got, err := db.LoadTables(ctx)
	require.NoError(t, err)

	require.Len(t, got.Orders, 2)
	assert.Len(t, got.Items, 2)
	assert.Len(t, got.Products, 2)
	assert.Len(t, got.Customers, 2)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, 5, got.Reviews[0].Score)
	assert.Len(t, got.Payments, 1)

	var o1 entity.Order
	for _, o := range got.Orders {
		if o.ID == "o1" {
			o1 = o
		}
	}
	assert.Equal(t, entity.OrderStatusDelivered, o1.Status)
	require.NotNil(t, o1.DeliveredAt)
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
