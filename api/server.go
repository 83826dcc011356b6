// Package api provides the HTTP REST API server for fininsight.
//
// It exposes country financial profiles, model-written summaries, the
// static country catalog, credential status and prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/llm"
	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/internal/metrics"
	"github.com/seenimoa/fininsight/internal/profile"
	"github.com/seenimoa/fininsight/pkg/models"
)

// ProfileBuilder builds one country profile per call.
type ProfileBuilder interface {
	BuildProfile(ctx context.Context, country string) *models.CountryFinancialProfile
}

// NarratorSource hands out narrators by provider name.
type NarratorSource interface {
	Get(name string) (llm.Narrator, error)
}

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	profiles  ProfileBuilder
	narrators NarratorSource
	gatherer  prometheus.Gatherer
	logger    *logging.Logger
	version   string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and lifecycle logs.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithProfileBuilder replaces the default provider-backed aggregator.
func WithProfileBuilder(b ProfileBuilder) Option {
	return func(s *Server) { s.profiles = b }
}

// WithNarrators replaces the narrator registry built from configuration.
func WithNarrators(n NarratorSource) Option {
	return func(s *Server) { s.narrators = n }
}

// NewServer creates a configured API server with all routes and middleware.
// Every server owns its own metrics registry.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	srv := &Server{cfg: cfg, version: "dev"}
	for _, opt := range opts {
		opt(srv)
	}
	srv.logger = logging.OrSilent(srv.logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv.gatherer = reg

	if srv.profiles == nil {
		srv.profiles = profile.NewFromConfig(cfg.Providers, metrics.New(reg), srv.logger)
	}
	if srv.narrators == nil {
		srv.narrators = llm.NewRegistry(context.Background(), cfg.LLM, srv.logger)
	}

	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	s.logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/countries", s.handleCountries)

		r.Get("/profile/{country}", s.handleProfile)
		r.Get("/profile/{country}/summary", s.handleSummary)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleKeyStatus)
	})

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SummaryResponse is the payload of the summary endpoint.
type SummaryResponse struct {
	Profile *models.CountryFinancialProfile `json:"profile"`
	Summary *models.ProfileSummary          `json:"summary"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
