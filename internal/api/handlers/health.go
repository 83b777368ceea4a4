package handlers

import (
	"log/slog"
	"net/http"
)

// Service identity reported by the liveness endpoints.
const (
	serviceName    = "scand"
	serviceVersion = "1.3.0"
)

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// RootResponse is the GET / body.
type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HealthHandler serves the static liveness endpoints.
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, RootResponse{
		Service: "CyberScan nmap Service",
		Version: serviceVersion,
		Status:  "running",
	})
}
