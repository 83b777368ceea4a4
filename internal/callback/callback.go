// Package callback delivers scan lifecycle notifications to client
// callback URLs. Delivery is fire-and-forget: a single POST per event,
// failures are logged and counted but never retried and never affect the
// scan outcome.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cyberscan/scand/internal/errors"
	"github.com/cyberscan/scand/internal/logging"
	"github.com/cyberscan/scand/internal/metrics"
	"github.com/cyberscan/scand/internal/report"
)

// Payload is the JSON body posted to the callback URL. Progress events
// carry only the first three fields; terminal events add results or an
// error plus the completion timestamp.
type Payload struct {
	ScanID      string         `json:"scan_id"`
	Status      string         `json:"status"`
	Progress    int            `json:"progress"`
	Results     *report.Report `json:"results,omitempty"`
	Error       string         `json:"error,omitempty"`
	CompletedAt string         `json:"completed_at,omitempty"`
}

// Progress builds a checkpoint notification for a running scan.
func Progress(scanID string, progress int) Payload {
	return Payload{
		ScanID:   scanID,
		Status:   "running",
		Progress: progress,
	}
}

// Completed builds the terminal notification for a successful scan.
func Completed(scanID string, rep *report.Report, completedAt time.Time) Payload {
	return Payload{
		ScanID:      scanID,
		Status:      "completed",
		Progress:    100,
		Results:     rep,
		CompletedAt: FormatTime(completedAt),
	}
}

// Failed builds the terminal notification for a failed scan.
func Failed(scanID, errMsg string, completedAt time.Time) Payload {
	return Payload{
		ScanID:      scanID,
		Status:      "failed",
		Progress:    100,
		Error:       errMsg,
		CompletedAt: FormatTime(completedAt),
	}
}

// FormatTime renders timestamps the way callback consumers expect.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Deliverer posts lifecycle notifications to a callback URL.
type Deliverer interface {
	Deliver(ctx context.Context, url string, payload Payload) error
}

// HTTPDeliverer delivers callbacks over HTTP POST.
type HTTPDeliverer struct {
	client  *http.Client
	metrics *metrics.PrometheusMetrics
}

// NewHTTPDeliverer creates a deliverer with the given per-request timeout.
func NewHTTPDeliverer(timeout time.Duration, pm *metrics.PrometheusMetrics) *HTTPDeliverer {
	return &HTTPDeliverer{
		client:  &http.Client{Timeout: timeout},
		metrics: pm,
	}
}

// Deliver posts the payload as JSON. A non-2xx response or transport error
// is logged and counted; the caller may inspect the returned error but the
// scan lifecycle must not depend on it.
func (d *HTTPDeliverer) Deliver(ctx context.Context, url string, payload Payload) error {
	attemptID := uuid.NewString()
	start := time.Now()

	err := d.post(ctx, url, payload)

	if d.metrics != nil {
		d.metrics.RecordCallbackDuration(time.Since(start))
		if err != nil {
			d.metrics.IncrementCallbacks("failure")
			d.metrics.IncrementCallbackErrors(deliveryReason(err))
		} else {
			d.metrics.IncrementCallbacks("success")
		}
	}

	if err != nil {
		logging.ErrorCallback("Callback delivery failed", url, err,
			"attempt_id", attemptID,
			"scan_id", payload.ScanID,
			"status", payload.Status)
		return err
	}

	logging.InfoCallback("Callback delivered", url,
		"attempt_id", attemptID,
		"scan_id", payload.ScanID,
		"status", payload.Status,
		"progress", payload.Progress)
	return nil
}

func (d *HTTPDeliverer) post(ctx context.Context, url string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapDeliveryError(url, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.WrapDeliveryError(url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.WrapDeliveryError(url, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return errors.NewDeliveryError(url, resp.StatusCode)
	}
	return nil
}

// deliveryReason classifies a delivery failure for metrics labels.
func deliveryReason(err error) string {
	var derr *errors.DeliveryError
	if stderrors.As(err, &derr) && derr.StatusCode > 0 {
		return "http_status"
	}
	return "transport"
}
