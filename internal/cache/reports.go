package cache

import (
	"sync"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

// Reports is an in-memory report cache. Values are immutable snapshots, so
// no copying is needed on read; separate report computations share nothing
// and may run concurrently.
type Reports struct {
	mu      sync.RWMutex
	reports map[entity.ReportKey]*entity.MetricsReport
}

func NewReports() *Reports {
	return &Reports{reports: make(map[entity.ReportKey]*entity.MetricsReport)}
}

func (c *Reports) Get(key entity.ReportKey) (*entity.MetricsReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.reports[key]
	return m, ok
}

func (c *Reports) Set(key entity.ReportKey, m *entity.MetricsReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[key] = m
}

func (c *Reports) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reports)
}
