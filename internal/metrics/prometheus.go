// Package metrics provides Prometheus-based metrics collection for scand.
// These collectors cover scan lifecycle, callback delivery, and HTTP traffic
// and are exposed through the /metrics endpoint.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all scand metrics
	namespace = "scand"

	// Subsystems
	subsystemScan     = "scan"
	subsystemCallback = "callback"
	subsystemAPI      = "api"
)

// PrometheusMetrics holds all Prometheus metric collectors.
type PrometheusMetrics struct {
	// Scan metrics
	scansTotal   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	scanErrors   *prometheus.CounterVec
	activeScans  prometheus.Gauge
	findings     *prometheus.CounterVec

	// Callback metrics
	callbacksTotal   *prometheus.CounterVec
	callbackDuration prometheus.Histogram
	callbackErrors   *prometheus.CounterVec

	// API metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{registry: registry}

	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Total number of scans performed by type and status",
		},
		[]string{"scan_type", "status"},
	)

	pm.scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Duration of scan operations in seconds",
			Buckets:   []float64{1.0, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0, 600.0, 900.0},
		},
		[]string{"scan_type"},
	)

	pm.scanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "errors_total",
			Help:      "Total number of scan errors by type and error class",
		},
		[]string{"scan_type", "error_type"},
	)

	pm.activeScans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "active",
			Help:      "Number of scans currently running",
		},
	)

	pm.findings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "findings_total",
			Help:      "Total number of findings produced by severity",
		},
		[]string{"severity"},
	)

	pm.callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCallback,
			Name:      "deliveries_total",
			Help:      "Total number of callback delivery attempts by status",
		},
		[]string{"status"},
	)

	pm.callbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemCallback,
			Name:      "duration_seconds",
			Help:      "Duration of callback delivery attempts in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
	)

	pm.callbackErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCallback,
			Name:      "errors_total",
			Help:      "Total number of callback delivery failures by reason",
		},
		[]string{"reason"},
	)

	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	registry.MustRegister(
		pm.scansTotal,
		pm.scanDuration,
		pm.scanErrors,
		pm.activeScans,
		pm.findings,
		pm.callbacksTotal,
		pm.callbackDuration,
		pm.callbackErrors,
		pm.httpRequests,
		pm.httpDuration,
	)

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// Handler returns an HTTP handler exposing the Prometheus metrics.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}

// IncrementScansTotal records a completed scan with its outcome status.
func (pm *PrometheusMetrics) IncrementScansTotal(scanType, status string) {
	pm.scansTotal.WithLabelValues(scanType, status).Inc()
}

// RecordScanDuration records how long a scan took.
func (pm *PrometheusMetrics) RecordScanDuration(scanType string, duration time.Duration) {
	pm.scanDuration.WithLabelValues(scanType).Observe(duration.Seconds())
}

// IncrementScanErrors records a scan error by class.
func (pm *PrometheusMetrics) IncrementScanErrors(scanType, errorType string) {
	pm.scanErrors.WithLabelValues(scanType, errorType).Inc()
}

// SetActiveScans sets the number of scans currently running.
func (pm *PrometheusMetrics) SetActiveScans(count float64) {
	pm.activeScans.Set(count)
}

// IncrementActiveScans increments the running-scan gauge.
func (pm *PrometheusMetrics) IncrementActiveScans() {
	pm.activeScans.Inc()
}

// DecrementActiveScans decrements the running-scan gauge.
func (pm *PrometheusMetrics) DecrementActiveScans() {
	pm.activeScans.Dec()
}

// AddFindings records findings produced by a completed scan.
func (pm *PrometheusMetrics) AddFindings(severity string, count int) {
	pm.findings.WithLabelValues(severity).Add(float64(count))
}

// IncrementCallbacks records a callback delivery attempt.
func (pm *PrometheusMetrics) IncrementCallbacks(status string) {
	pm.callbacksTotal.WithLabelValues(status).Inc()
}

// RecordCallbackDuration records how long a callback delivery took.
func (pm *PrometheusMetrics) RecordCallbackDuration(duration time.Duration) {
	pm.callbackDuration.Observe(duration.Seconds())
}

// IncrementCallbackErrors records a callback delivery failure by reason.
func (pm *PrometheusMetrics) IncrementCallbackErrors(reason string) {
	pm.callbackErrors.WithLabelValues(reason).Inc()
}

// IncrementHTTPRequests records an HTTP request by method and status code.
func (pm *PrometheusMetrics) IncrementHTTPRequests(method, status string) {
	pm.httpRequests.WithLabelValues(method, status).Inc()
}

// RecordHTTPDuration records the duration of an HTTP request.
func (pm *PrometheusMetrics) RecordHTTPDuration(method string, duration time.Duration) {
	pm.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Global Prometheus metrics instance.
var (
	globalMetrics     *PrometheusMetrics
	globalMetricsOnce sync.Once
)

// GetGlobalMetrics returns the process-wide Prometheus metrics instance.
func GetGlobalMetrics() *PrometheusMetrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}
