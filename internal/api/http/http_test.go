package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/ecom-insights/internal/dto"
	"github.com/shoplytics/ecom-insights/internal/entity"
	gerr "github.com/shoplytics/ecom-insights/internal/errors"
)

type stubProvider struct {
	lastReq entity.ReportRequest
	report  *entity.MetricsReport
	err     error
}

func (s *stubProvider) GetReport(ctx context.Context, req entity.ReportRequest) (*entity.MetricsReport, error) {
	s.lastReq = req
	return s.report, s.err
}

func (s *stubProvider) AvailableYears(ctx context.Context) ([]int, error) {
	return []int{2023, 2022}, s.err
}

func newTestServer(p *stubProvider) *httptest.Server {
	s := New(&Config{}, p)
	return httptest.NewServer(s.Handler())
}

func TestGetReport(t *testing.T) {
	p := &stubProvider{report: &entity.MetricsReport{ID: uuid.New(), GeneratedAt: time.Now()}}
	ts := newTestServer(p)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/report?year=2023&month=5&status=delivered&compare_year=2022")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, p.report.ID.String(), body.ID)

	require.NotNil(t, p.lastReq.Filter.Year)
	assert.Equal(t, 2023, *p.lastReq.Filter.Year)
	require.NotNil(t, p.lastReq.Filter.Month)
	assert.Equal(t, 5, *p.lastReq.Filter.Month)
	assert.Equal(t, entity.OrderStatusDelivered, p.lastReq.Filter.Status)
	require.NotNil(t, p.lastReq.CompareYear)
	assert.Equal(t, 2022, *p.lastReq.CompareYear)
}

func TestGetReportBadQuery(t *testing.T) {
	ts := newTestServer(&stubProvider{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/report?year=twenty")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetReportInvalidFilter(t *testing.T) {
	p := &stubProvider{err: fmt.Errorf("%w: month filter requires year filter", gerr.ErrInvalidFilter)}
	ts := newTestServer(p)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/report?month=3")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetYears(t *testing.T) {
	ts := newTestServer(&stubProvider{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/years")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []int{2023, 2022}, body["years"])
}

func TestRateLimit(t *testing.T) {
	p := &stubProvider{report: &entity.MetricsReport{ID: uuid.New(), GeneratedAt: time.Now()}}
	s := New(&Config{RateLimitPerMinute: 2}, p)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/api/report")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/report")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// healthz is not limited
	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&stubProvider{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
