package insights

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"log/slog"

	"github.com/shoplytics/ecom-insights/internal/dataset"
	"github.com/shoplytics/ecom-insights/internal/dependency"
	"github.com/shoplytics/ecom-insights/internal/entity"
	"github.com/shoplytics/ecom-insights/internal/report"
)

// Config holds service-level defaults.
type Config struct {
	// DefaultStatus is applied when a request carries no status filter.
	// The engine itself has no hidden default; this is caller policy.
	DefaultStatus string `mapstructure:"default_status"`
}

// Service turns analysis requests into metrics reports. Raw tables are
// loaded once per process and treated as read-only afterwards; computed
// reports are cached by their filter tuple.
type Service struct {
	c     *Config
	src   dependency.DataSource
	cache dependency.ReportCache

	mu     sync.Mutex
	tables *entity.RawTables
}

func New(c *Config, src dependency.DataSource, cache dependency.ReportCache) *Service {
	return &Service{c: c, src: src, cache: cache}
}

// GetReport computes the report for one period, with an optional comparison
// year. Results are cached; recomputation for the same filter tuple is a
// map lookup.
func (s *Service) GetReport(ctx context.Context, req entity.ReportRequest) (*entity.MetricsReport, error) {
	if req.Filter.Status == "" && s.c.DefaultStatus != "" {
		req.Filter.Status = entity.OrderStatus(s.c.DefaultStatus)
	}
	if err := req.Filter.Validate(); err != nil {
		return nil, err
	}

	key := req.CacheKey()
	if s.cache != nil {
		if m, ok := s.cache.Get(key); ok {
			return m, nil
		}
	}

	tables, err := s.loadTables(ctx)
	if err != nil {
		return nil, err
	}

	current, err := dataset.Prepare(tables, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("prepare current period: %w", err)
	}

	var previous []entity.SalesRecord
	if req.CompareYear != nil {
		prevFilter := entity.SalesFilter{
			Year:   req.CompareYear,
			Month:  req.Filter.Month,
			Status: req.Filter.Status,
		}
		previous, err = dataset.Prepare(tables, prevFilter)
		if err != nil {
			return nil, fmt.Errorf("prepare comparison period: %w", err)
		}
		if previous == nil {
			// an empty comparison period is still a supplied one
			previous = []entity.SalesRecord{}
		}
	}

	m := report.Compute(current, previous)
	m.Filter = req.Filter
	m.CompareYear = req.CompareYear

	if s.cache != nil {
		s.cache.Set(key, m)
	}
	slog.Default().DebugContext(ctx, "report computed",
		slog.Int("records", len(current)),
		slog.Int("orders", m.Revenue.TotalOrders),
	)
	return m, nil
}

// AvailableYears returns the distinct purchase years present in the data,
// newest first.
func (s *Service) AvailableYears(ctx context.Context) ([]int, error) {
	tables, err := s.loadTables(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	for _, o := range tables.Orders {
		seen[o.PurchasedAt.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (s *Service) loadTables(ctx context.Context) (*entity.RawTables, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables != nil {
		return s.tables, nil
	}
	tables, err := s.src.LoadTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	s.tables = tables
	return tables, nil
}
