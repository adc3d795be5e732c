package cache

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

func TestReportsGetSet(t *testing.T) {
	c := NewReports()
	key := entity.ReportKey{Year: 2023, Status: entity.OrderStatusDelivered}

	_, ok := c.Get(key)
	assert.False(t, ok)

	m := &entity.MetricsReport{ID: uuid.New()}
	c.Set(key, m)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, m.ID, got.ID)

	// distinct filter tuple is a distinct entry
	other := entity.ReportKey{Year: 2023, Month: 2, Status: entity.OrderStatusDelivered}
	_, ok = c.Get(other)
	assert.False(t, ok)
}

func TestReportsConcurrentAccess(t *testing.T) {
	c := NewReports()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			key := entity.ReportKey{Year: year}
			c.Set(key, &entity.MetricsReport{ID: uuid.New()})
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 32, c.Len())
}
