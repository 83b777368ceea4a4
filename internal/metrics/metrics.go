// Package metrics provides monitoring and metrics collection for scand.
// It supports counters, gauges, and histograms with label support for tracking
// application performance and operational metrics.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric.
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// Labels represents key-value pairs for metric labels.
type Labels map[string]string

// Metric represents a single metric with its metadata.
type Metric struct {
	Name      string
	Type      MetricType
	Value     float64
	Labels    Labels
	Timestamp time.Time
}

// Registry holds all metrics and provides collection functionality.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
	enabled bool
}

// NewRegistry creates a new metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]*Metric),
		enabled: true,
	}
}

// SetEnabled enables or disables metrics collection.
func (r *Registry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// IsEnabled returns whether metrics collection is enabled.
func (r *Registry) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Counter increments a counter metric.
func (r *Registry) Counter(name string, labels Labels) {
	if !r.IsEnabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.makeKey(name, labels)
	if metric, exists := r.metrics[key]; exists {
		metric.Value++
		metric.Timestamp = time.Now()
	} else {
		r.metrics[key] = &Metric{
			Name:      name,
			Type:      TypeCounter,
			Value:     1,
			Labels:    labels,
			Timestamp: time.Now(),
		}
	}
}

// Gauge sets a gauge metric value.
func (r *Registry) Gauge(name string, value float64, labels Labels) {
	if !r.IsEnabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.makeKey(name, labels)
	r.metrics[key] = &Metric{
		Name:      name,
		Type:      TypeGauge,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Histogram records a value in a histogram metric.
func (r *Registry) Histogram(name string, value float64, labels Labels) {
	if !r.IsEnabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.makeKey(name, labels)
	if metric, exists := r.metrics[key]; exists {
		// Simple histogram implementation - just track last value
		metric.Value = value
		metric.Timestamp = time.Now()
	} else {
		r.metrics[key] = &Metric{
			Name:      name,
			Type:      TypeHistogram,
			Value:     value,
			Labels:    labels,
			Timestamp: time.Now(),
		}
	}
}

// GetMetrics returns a snapshot of all current metrics.
func (r *Registry) GetMetrics() map[string]*Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Metric, len(r.metrics))
	for key, metric := range r.metrics {
		result[key] = &Metric{
			Name:      metric.Name,
			Type:      metric.Type,
			Value:     metric.Value,
			Labels:    copyLabels(metric.Labels),
			Timestamp: metric.Timestamp,
		}
	}
	return result
}

// Reset clears all metrics.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = make(map[string]*Metric)
}

// makeKey builds a stable map key from a metric name and its labels.
func (r *Registry) makeKey(name string, labels Labels) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString("{")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(labels[k])
		sb.WriteString("}")
	}
	return sb.String()
}

// copyLabels creates a copy of a labels map.
func copyLabels(labels Labels) Labels {
	if labels == nil {
		return nil
	}
	result := make(Labels, len(labels))
	for k, v := range labels {
		result[k] = v
	}
	return result
}
