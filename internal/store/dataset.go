package store

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/shoplytics/ecom-insights/internal/dependency"
	"github.com/shoplytics/ecom-insights/internal/entity"
)

// insertChunk keeps bulk inserts under the MySQL placeholder limit.
const insertChunk = 1000

// LoadTables materializes the six source tables in memory. The result is
// treated as read-only by callers.
func (ms *MYSQLStore) LoadTables(ctx context.Context) (*entity.RawTables, error) {
	t := &entity.RawTables{}

	queries := []struct {
		dest  interface{}
		query string
	}{
		{&t.Orders, "SELECT id, customer_id, status, purchased_at, delivered_at FROM orders"},
		{&t.Items, "SELECT order_id, product_id, price, freight_value FROM order_items"},
		{&t.Products, "SELECT id, category FROM products"},
		{&t.Customers, "SELECT id, state FROM customers"},
		{&t.Reviews, "SELECT id, order_id, score FROM reviews"},
		{&t.Payments, "SELECT order_id, value FROM payments"},
	}
	for _, q := range queries {
		if err := ms.db.SelectContext(ctx, q.dest, q.query); err != nil {
			return nil, fmt.Errorf("select %q: %w", q.query, err)
		}
	}

	slog.Default().InfoContext(ctx, "loaded tables from mysql",
		slog.Int("orders", len(t.Orders)),
		slog.Int("items", len(t.Items)),
		slog.Int("reviews", len(t.Reviews)),
	)
	return t, nil
}

// InsertTables bulk-loads raw datasets into the database, chunked to stay
// under the placeholder limit. Intended for one-off ingestion of CSV
// exports; it does not deduplicate against existing rows.
func (ms *MYSQLStore) InsertTables(ctx context.Context, t *entity.RawTables) error {
	if err := namedInsertChunked(ctx, ms.db,
		`INSERT INTO orders (id, customer_id, status, purchased_at, delivered_at)
		VALUES (:id, :customer_id, :status, :purchased_at, :delivered_at)`,
		t.Orders); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}
	if err := namedInsertChunked(ctx, ms.db,
		`INSERT INTO order_items (order_id, product_id, price, freight_value)
		VALUES (:order_id, :product_id, :price, :freight_value)`,
		t.Items); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	if err := namedInsertChunked(ctx, ms.db,
		`INSERT INTO products (id, category) VALUES (:id, :category)`,
		t.Products); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	if err := namedInsertChunked(ctx, ms.db,
		`INSERT INTO customers (id, state) VALUES (:id, :state)`,
		t.Customers); err != nil {
		return fmt.Errorf("insert customers: %w", err)
	}
	if err := namedInsertChunked(ctx, ms.db,
		`INSERT INTO reviews (id, order_id, score) VALUES (:id, :order_id, :score)`,
		t.Reviews); err != nil {
		return fmt.Errorf("insert reviews: %w", err)
	}
	if err := namedInsertChunked(ctx, ms.db,
		`INSERT INTO payments (order_id, value) VALUES (:order_id, :value)`,
		t.Payments); err != nil {
		return fmt.Errorf("insert payments: %w", err)
	}
	return nil
}

func namedInsertChunked[T any](ctx context.Context, db dependency.DB, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertChunk {
		end := start + insertChunk
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := db.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return fmt.Errorf("rows %d..%d: %w", start, end, err)
		}
	}
	return nil
}
