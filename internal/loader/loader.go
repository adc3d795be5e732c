package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

// Config defines where the CSV datasets live.
type Config struct {
	Dir string `mapstructure:"dir"`
}

// Expected file names inside the dataset directory.
const (
	ordersFile    = "orders.csv"
	itemsFile     = "order_items.csv"
	productsFile  = "products.csv"
	customersFile = "customers.csv"
	reviewsFile   = "reviews.csv"
	paymentsFile  = "payments.csv"
)

var timestampLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// CSVLoader reads the six e-commerce datasets from disk. Malformed rows are
// skipped and counted, never zero-filled.
type CSVLoader struct {
	c *Config
}

func New(c *Config) *CSVLoader {
	return &CSVLoader{c: c}
}

// LoadTables reads all six CSV files into memory.
func (l *CSVLoader) LoadTables(ctx context.Context) (*entity.RawTables, error) {
	t := &entity.RawTables{}
	var err error

	if t.Orders, err = readCSV(ctx, filepath.Join(l.c.Dir, ordersFile), parseOrder); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	if t.Items, err = readCSV(ctx, filepath.Join(l.c.Dir, itemsFile), parseItem); err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	if t.Products, err = readCSV(ctx, filepath.Join(l.c.Dir, productsFile), parseProduct); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if t.Customers, err = readCSV(ctx, filepath.Join(l.c.Dir, customersFile), parseCustomer); err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	if t.Reviews, err = readCSV(ctx, filepath.Join(l.c.Dir, reviewsFile), parseReview); err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	if t.Payments, err = readCSV(ctx, filepath.Join(l.c.Dir, paymentsFile), parsePayment); err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}

	slog.Default().InfoContext(ctx, "datasets loaded",
		slog.Int("orders", len(t.Orders)),
		slog.Int("order_items", len(t.Items)),
		slog.Int("products", len(t.Products)),
		slog.Int("customers", len(t.Customers)),
		slog.Int("reviews", len(t.Reviews)),
		slog.Int("payments", len(t.Payments)),
	)
	return t, nil
}

// row gives parse functions access to columns by header name.
type row struct {
	columns map[string]int
	fields  []string
}

func (r row) get(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

func readCSV[T any](ctx context.Context, path string, parse func(row) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var (
		out     []T
		skipped int
	)
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		v, err := parse(row{columns: columns, fields: fields})
		if err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	if skipped > 0 {
		slog.Default().WarnContext(ctx, "skipped malformed csv rows",
			slog.String("file", filepath.Base(path)), slog.Int("skipped", skipped))
	}
	return out, nil
}

func parseOrder(r row) (entity.Order, error) {
	purchased, err := parseTimestamp(r.get("order_purchase_timestamp"))
	if err != nil {
		return entity.Order{}, err
	}
	o := entity.Order{
		ID:          r.get("order_id"),
		CustomerID:  r.get("customer_id"),
		Status:      entity.OrderStatus(r.get("order_status")),
		PurchasedAt: purchased,
	}
	if o.ID == "" || o.CustomerID == "" {
		return entity.Order{}, fmt.Errorf("missing order or customer id")
	}
	if raw := r.get("order_delivered_customer_date"); raw != "" {
		delivered, err := parseTimestamp(raw)
		if err == nil {
			o.DeliveredAt = &delivered
		}
	}
	return o, nil
}

func parseItem(r row) (entity.OrderItem, error) {
	price, err := decimal.NewFromString(r.get("price"))
	if err != nil {
		return entity.OrderItem{}, fmt.Errorf("price: %w", err)
	}
	it := entity.OrderItem{
		OrderID:   r.get("order_id"),
		ProductID: r.get("product_id"),
		Price:     price,
	}
	if it.OrderID == "" || it.ProductID == "" {
		return entity.OrderItem{}, fmt.Errorf("missing order or product id")
	}
	if raw := r.get("freight_value"); raw != "" {
		if freight, err := decimal.NewFromString(raw); err == nil {
			it.Freight = freight
		}
	}
	return it, nil
}

func parseProduct(r row) (entity.Product, error) {
	p := entity.Product{ID: r.get("product_id"), Category: r.get("product_category_name")}
	if p.ID == "" {
		return entity.Product{}, fmt.Errorf("missing product id")
	}
	return p, nil
}

func parseCustomer(r row) (entity.Customer, error) {
	c := entity.Customer{ID: r.get("customer_id"), State: r.get("customer_state")}
	if c.ID == "" {
		return entity.Customer{}, fmt.Errorf("missing customer id")
	}
	return c, nil
}

func parseReview(r row) (entity.Review, error) {
	score, err := strconv.Atoi(r.get("review_score"))
	if err != nil {
		return entity.Review{}, fmt.Errorf("score: %w", err)
	}
	if score < 1 || score > 5 {
		return entity.Review{}, fmt.Errorf("score %d outside 1..5", score)
	}
	rv := entity.Review{ID: r.get("review_id"), OrderID: r.get("order_id"), Score: score}
	if rv.OrderID == "" {
		return entity.Review{}, fmt.Errorf("missing order id")
	}
	return rv, nil
}

func parsePayment(r row) (entity.Payment, error) {
	value, err := decimal.NewFromString(r.get("payment_value"))
	if err != nil {
		return entity.Payment{}, fmt.Errorf("value: %w", err)
	}
	p := entity.Payment{OrderID: r.get("order_id"), Value: value}
	if p.OrderID == "" {
		return entity.Payment{}, fmt.Errorf("missing order id")
	}
	return p, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
