package dependency

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/shoplytics/ecom-insights/internal/entity"
)

type (
	// DataSource supplies the six raw datasets, already materialized in
	// memory. Implementations: CSV loader, MySQL store.
	DataSource interface {
		LoadTables(ctx context.Context) (*entity.RawTables, error)
	}

	// ReportCache stores immutable reports keyed by their filter tuple.
	// Invalidation is unnecessary: source data is read-only for the
	// process lifetime.
	ReportCache interface {
		Get(key entity.ReportKey) (*entity.MetricsReport, bool)
		Set(key entity.ReportKey, m *entity.MetricsReport)
	}

	// ReportProvider computes (or returns cached) reports per analysis
	// request. Implemented by the insights service, consumed by the HTTP
	// layer.
	ReportProvider interface {
		GetReport(ctx context.Context, req entity.ReportRequest) (*entity.MetricsReport, error)
		AvailableYears(ctx context.Context) ([]int, error)
	}

	// DB represents the database interface used by the MySQL store.
	DB interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}
)
