// Package api provides the HTTP surface of the scand service: scan
// submission, status polling, profile listing, liveness, and metrics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/cyberscan/scand/internal/api/handlers"
	"github.com/cyberscan/scand/internal/api/middleware"
	"github.com/cyberscan/scand/internal/config"
	"github.com/cyberscan/scand/internal/logging"
	"github.com/cyberscan/scand/internal/metrics"
)

// Server represents the API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *slog.Logger
	metrics    *metrics.PrometheusMetrics
	stats      metrics.MetricsRegistry
	startTime  time.Time
}

// New creates an API server wired to the given scan service.
func New(cfg *config.Config, service handlers.ScanService, pm *metrics.PrometheusMetrics) *Server {
	logger := logging.Default().With("component", "api")

	server := &Server{
		router:    mux.NewRouter(),
		config:    cfg,
		logger:    logger,
		metrics:   pm,
		stats:     metrics.NewRegistry(),
		startTime: time.Now(),
	}

	server.setupRoutes(service)
	handler := server.setupMiddleware()

	server.httpServer = &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        handler,
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
		IdleTimeout:    cfg.API.IdleTimeout,
		MaxHeaderBytes: cfg.API.MaxHeaderBytes,
	}

	return server
}

// Router returns the underlying router. Exposed for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server and blocks until the context is canceled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server",
		"address", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errChan:
		return err
	}
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.API.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("API server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped successfully")
	return nil
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes(service handlers.ScanService) {
	scanHandler := handlers.NewScanHandler(service, s.logger)
	healthHandler := handlers.NewHealthHandler(s.logger)

	s.router.HandleFunc("/scan", scanHandler.SubmitScan).Methods("POST")
	s.router.HandleFunc("/scan/{scan_id}/status", scanHandler.GetScanStatus).Methods("GET")
	s.router.HandleFunc("/scan-types", scanHandler.ListScanTypes).Methods("GET")
	s.router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	s.router.HandleFunc("/stats", s.statsHandler).Methods("GET")
	s.router.HandleFunc("/", healthHandler.Root).Methods("GET")

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

// statsHandler returns a snapshot of the in-process request stats.
func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	snapshot := map[string]interface{}{
		"uptime_seconds": time.Since(s.startTime).Seconds(),
		"metrics":        s.stats.GetMetrics(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Error("Failed to encode stats response", "error", err)
	}
}

// setupMiddleware wraps the router in the middleware chain. Order matters:
// recovery outermost, then logging, metrics, auth, and CORS.
func (s *Server) setupMiddleware() http.Handler {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.Logging(s.logger))
	s.router.Use(middleware.Metrics(s.metrics, s.stats))
	s.router.Use(middleware.SharedSecret(s.config.API.SharedSecret, s.logger))

	var handler http.Handler = s.router
	if s.config.API.EnableCORS {
		handler = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(s.config.API.CORSOrigins),
			gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type", middleware.SecretHeader}),
		)(handler)
	}
	return handler
}
