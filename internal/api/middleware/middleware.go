// Package middleware provides HTTP middleware for the scand API server:
// request logging, panic recovery, metrics collection, and shared-secret
// authentication.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cyberscan/scand/internal/metrics"
)

// ContextKey represents a context key type.
type ContextKey string

// RequestIDKey is the context key for request IDs.
const RequestIDKey ContextKey = "request_id"

// SecretHeader is the request header carrying the shared secret.
const SecretHeader = "X-Scanner-Secret"

// openPaths are reachable without the shared secret.
var openPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/metrics": true,
}

// responseWriter wraps http.ResponseWriter to capture the status code and
// response size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// GetRequestID extracts the request ID from the request context.
func GetRequestID(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return "unknown"
}

// Logging assigns each request an ID and logs it on completion.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := uuid.NewString()
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(wrapped, r)

			if logger != nil {
				logger.Info("HTTP request completed",
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"status_code", wrapped.statusCode,
					"response_size", wrapped.size,
					"duration_ms", time.Since(start).Milliseconds(),
					"remote_addr", getClientIP(r))
			}
		})
	}
}

// Metrics records request counts and latency into the Prometheus
// collectors and the in-process stats registry.
func Metrics(pm *metrics.PrometheusMetrics, registry metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			status := strconv.Itoa(wrapped.statusCode)

			if pm != nil {
				pm.IncrementHTTPRequests(r.Method, status)
				pm.RecordHTTPDuration(r.Method, duration)
			}

			if registry != nil {
				labels := metrics.Labels{
					"method": r.Method,
					"path":   r.URL.Path,
					"status": status,
				}
				registry.Counter("http_requests_total", labels)
				registry.Histogram("http_request_duration_seconds", duration.Seconds(), labels)
			}
		})
	}
}

// Recovery catches handler panics and returns a 500 response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID := GetRequestID(r)

					logger.Error("HTTP request panic recovered",
						"request_id", requestID,
						"method", r.Method,
						"path", r.URL.Path,
						"panic", err,
						"stack", string(debug.Stack()),
						"remote_addr", getClientIP(r))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]interface{}{
						"error":      "Internal server error",
						"request_id": requestID,
						"timestamp":  time.Now().UTC(),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// SharedSecret rejects requests whose X-Scanner-Secret header does not
// match the configured secret. An empty secret disables the check.
// Liveness and metrics endpoints stay open so probes keep working.
func SharedSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || openPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get(SecretHeader) != secret {
				logger.Warn("Request with missing or invalid scanner secret",
					"request_id", GetRequestID(r),
					"path", r.URL.Path,
					"remote_addr", getClientIP(r))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":     "Unauthorized",
					"timestamp": time.Now().UTC(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP, honoring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
