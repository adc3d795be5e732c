package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/shoplytics/ecom-insights/config"
	httpapi "github.com/shoplytics/ecom-insights/internal/api/http"
	"github.com/shoplytics/ecom-insights/internal/cache"
	"github.com/shoplytics/ecom-insights/internal/dependency"
	"github.com/shoplytics/ecom-insights/internal/insights"
	"github.com/shoplytics/ecom-insights/internal/loader"
	"github.com/shoplytics/ecom-insights/internal/store"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	db   *store.MYSQLStore
	c    *config.Config
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting ecom-insights",
		slog.String("dataset_source", a.c.Dataset.Source),
	)

	var src dependency.DataSource
	switch a.c.Dataset.Source {
	case "csv":
		src = loader.New(&a.c.Dataset.CSV)
	case "mysql":
		db, err := store.New(ctx, a.c.DB)
		if err != nil {
			slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
				slog.String("err", err.Error()),
			)
			return err
		}
		a.db = db
		src = db
	default:
		return fmt.Errorf("unknown dataset source %q", a.c.Dataset.Source)
	}

	svc := insights.New(&a.c.Insights, src, cache.NewReports())

	a.hs = httpapi.New(&a.c.HTTP, svc)
	if err := a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
