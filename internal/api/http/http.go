package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shoplytics/ecom-insights/internal/dependency"
	"github.com/shoplytics/ecom-insights/internal/dto"
	"github.com/shoplytics/ecom-insights/internal/entity"
	gerr "github.com/shoplytics/ecom-insights/internal/errors"
	"github.com/shoplytics/ecom-insights/internal/ratelimit"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimitPerMinute caps report requests per client IP. Zero disables
	// limiting.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
}

// Server is the http server
type Server struct {
	hs       *http.Server
	c        *Config
	insights dependency.ReportProvider
	limiter  *ratelimit.Limiter
	done     chan struct{}
}

// New creates a new server
func New(config *Config, insights dependency.ReportProvider) *Server {
	s := &Server{
		c:        config,
		insights: insights,
		done:     make(chan struct{}),
	}
	if config.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(time.Minute, config.RateLimitPerMinute)
	}
	return s
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Handler builds the router. Exposed separately from Start for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/report", s.handleGetReport)
		r.Get("/years", s.handleGetYears)
	})
	return r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !s.limiter.Allow(host) {
				respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("ecom-insights new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}

// Stop shuts the server down, letting in-flight requests drain.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.hs.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.insights.GetReport(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ConvertReport(m))
}

func (s *Server) handleGetYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.insights.AvailableYears(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]int{"years": years})
}

func parseReportRequest(r *http.Request) (entity.ReportRequest, error) {
	var req entity.ReportRequest
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dest **int
	}{
		{"year", &req.Filter.Year},
		{"month", &req.Filter.Month},
		{"compare_year", &req.CompareYear},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %s=%q is not a number", gerr.ErrInvalidFilter, p.name, raw)
		}
		*p.dest = &v
	}

	req.Filter.Status = entity.OrderStatus(q.Get("status"))
	return req, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", slog.String("err", err.Error()))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gerr.ErrInvalidFilter):
		status = http.StatusBadRequest
	case errors.Is(err, gerr.ErrDataIntegrity):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
