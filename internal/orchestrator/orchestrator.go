package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/cyberscan/scand/internal/callback"
	"github.com/cyberscan/scand/internal/config"
	"github.com/cyberscan/scand/internal/errors"
	"github.com/cyberscan/scand/internal/logging"
	"github.com/cyberscan/scand/internal/metrics"
	"github.com/cyberscan/scand/internal/profiles"
	"github.com/cyberscan/scand/internal/report"
	"github.com/cyberscan/scand/internal/scanning"
)

// targetPattern constrains targets to hostnames, IP literals, and
// CIDR-like forms. Anything with shell metacharacters is rejected before
// it can reach the engine's argument string.
var targetPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-:]+$`)

// Progress checkpoints emitted during a scan's lifetime.
const (
	progressStarted    = 10
	progressDispatched = 25
	progressScanned    = 75
	progressAggregated = 90
	progressDone       = 100
)

// Request carries the admission parameters for a new scan.
type Request struct {
	ScanID      string
	Target      string
	ScanType    string
	ScanSubtype string
	Priority    string
	CallbackURL string
}

// Orchestrator admits scan requests, runs them asynchronously against the
// engine, and reports lifecycle events through the callback deliverer.
type Orchestrator struct {
	registry  *Registry
	engine    scanning.Engine
	deliverer callback.Deliverer
	metrics   *metrics.PrometheusMetrics
	logger    *logging.Logger

	defaultCallback string
	sem             chan struct{}

	wg sync.WaitGroup
}

// New creates an orchestrator wired to the given engine and deliverer.
func New(cfg config.ScanningConfig, defaultCallback string, registry *Registry,
	engine scanning.Engine, deliverer callback.Deliverer, pm *metrics.PrometheusMetrics,
) *Orchestrator {
	return &Orchestrator{
		registry:        registry,
		engine:          engine,
		deliverer:       deliverer,
		metrics:         pm,
		logger:          logging.Default().WithComponent("orchestrator"),
		defaultCallback: defaultCallback,
		sem:             make(chan struct{}, cfg.MaxConcurrentScans),
	}
}

// Submit validates and admits a scan request. On success the scan runs in
// the background and Submit returns immediately. Admission errors carry a
// code the HTTP layer maps to a client status.
func (o *Orchestrator) Submit(ctx context.Context, req Request) error {
	if req.ScanID == "" {
		return errors.NewScanError(errors.CodeValidation, "scan_id is required")
	}
	if req.Target == "" {
		return errors.NewScanError(errors.CodeValidation, "target is required")
	}
	if !targetPattern.MatchString(req.Target) {
		return errors.ErrInvalidTarget(req.Target)
	}
	if _, err := profiles.Resolve(req.ScanType); err != nil {
		return err
	}

	select {
	case o.sem <- struct{}{}:
	default:
		return errors.ErrCapacityExceeded()
	}

	cbURL := req.CallbackURL
	if cbURL == "" {
		cbURL = o.defaultCallback
	}

	state := &ScanState{
		ScanID:      req.ScanID,
		Status:      StatusRunning,
		Progress:    0,
		Target:      req.Target,
		ScanType:    req.ScanType,
		ScanSubtype: req.ScanSubtype,
		CallbackURL: cbURL,
		StartedAt:   time.Now().UTC(),
	}

	if err := o.registry.Create(state); err != nil {
		<-o.sem
		return err
	}

	o.wg.Add(1)
	go o.run(req, cbURL)

	o.logger.InfoScan("Scan admitted", req.ScanID,
		"target", req.Target,
		"scan_type", req.ScanType,
		"scan_subtype", req.ScanSubtype)
	return nil
}

// GetStatus returns a snapshot of the scan's current state.
func (o *Orchestrator) GetStatus(scanID string) (ScanState, error) {
	return o.registry.Get(scanID)
}

// Wait blocks until all background scans have finished. Used during
// shutdown.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run executes the scan lifecycle in the background. The registry lock is
// never held across the engine call or a callback delivery.
func (o *Orchestrator) run(req Request, cbURL string) {
	defer o.wg.Done()
	defer func() { <-o.sem }()

	if o.metrics != nil {
		o.metrics.IncrementActiveScans()
		defer o.metrics.DecrementActiveScans()
	}

	start := time.Now()

	profile, err := profiles.Resolve(req.ScanType)
	if err != nil {
		o.fail(req, cbURL, err, start)
		return
	}
	args, err := profiles.Arguments(req.ScanType, req.ScanSubtype)
	if err != nil {
		o.fail(req, cbURL, err, start)
		return
	}

	o.checkpoint(req.ScanID, cbURL, progressStarted)

	o.logger.InfoScan("Starting scan", req.ScanID,
		"target", req.Target,
		"args", args)

	o.checkpoint(req.ScanID, cbURL, progressDispatched)

	// The profile timeout bounds the engine subprocess.
	ctx, cancel := context.WithTimeout(context.Background(), profile.Timeout+30*time.Second)
	defer cancel()

	hosts, err := o.engine.Run(ctx, req.Target, args)
	if err != nil {
		o.fail(req, cbURL, err, start)
		return
	}

	o.checkpoint(req.ScanID, cbURL, progressScanned)

	rep := report.Build(hosts, req.ScanType)

	o.checkpoint(req.ScanID, cbURL, progressAggregated)

	completedAt := time.Now().UTC()

	o.registry.Update(req.ScanID, func(s *ScanState) {
		s.Status = StatusCompleted
		s.Progress = progressDone
		s.CompletedAt = &completedAt
	})

	o.deliver(req.ScanID, cbURL, callback.Completed(req.ScanID, &rep, completedAt))

	if o.metrics != nil {
		o.metrics.IncrementScansTotal(req.ScanType, StatusCompleted)
		o.metrics.RecordScanDuration(req.ScanType, time.Since(start))
		o.recordFindings(rep.Summary)
	}

	o.logger.InfoScan("Scan completed", req.ScanID,
		"target", req.Target,
		"hosts_scanned", rep.HostsScanned,
		"findings", rep.FindingsCount,
		"risk_score", fmt.Sprintf("%.1f", rep.RiskScore),
		"risk_level", rep.RiskLevel,
		"duration", time.Since(start))
}

// fail transitions the scan to failed and notifies the callback.
func (o *Orchestrator) fail(req Request, cbURL string, scanErr error, start time.Time) {
	completedAt := time.Now().UTC()

	o.registry.Update(req.ScanID, func(s *ScanState) {
		s.Status = StatusFailed
		s.Progress = progressDone
		s.Error = scanErr.Error()
		s.CompletedAt = &completedAt
	})

	o.deliver(req.ScanID, cbURL, callback.Failed(req.ScanID, scanErr.Error(), completedAt))

	if o.metrics != nil {
		o.metrics.IncrementScansTotal(req.ScanType, StatusFailed)
		o.metrics.RecordScanDuration(req.ScanType, time.Since(start))
		o.metrics.IncrementScanErrors(req.ScanType, string(errors.GetCode(scanErr)))
	}

	o.logger.ErrorScan("Scan failed", req.ScanID, scanErr,
		"target", req.Target,
		"scan_type", req.ScanType)
}

// checkpoint advances progress and notifies the callback. Progress never
// moves backward.
func (o *Orchestrator) checkpoint(scanID, cbURL string, progress int) {
	o.registry.Update(scanID, func(s *ScanState) {
		if progress > s.Progress {
			s.Progress = progress
		}
	})
	o.deliver(scanID, cbURL, callback.Progress(scanID, progress))
}

// deliver posts a payload when a callback URL is configured. Delivery
// failures never affect the scan.
func (o *Orchestrator) deliver(scanID, cbURL string, payload callback.Payload) {
	if cbURL == "" {
		return
	}
	if err := o.deliverer.Deliver(context.Background(), cbURL, payload); err != nil {
		logging.Debug("Callback delivery error ignored", "scan_id", scanID, "url", cbURL)
	}
}

func (o *Orchestrator) recordFindings(s report.Summary) {
	o.metrics.AddFindings(report.SeverityCritical, s.CriticalFindings)
	o.metrics.AddFindings(report.SeverityHigh, s.HighFindings)
	o.metrics.AddFindings(report.SeverityMedium, s.MediumFindings)
	o.metrics.AddFindings(report.SeverityLow, s.LowFindings)
	o.metrics.AddFindings(report.SeverityInfo, s.InfoFindings)
}
