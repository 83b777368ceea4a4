// Package orchestrator coordinates the scan lifecycle: admission, state
// tracking, asynchronous engine execution, report aggregation, and
// callback notification.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/cyberscan/scand/internal/errors"
	"github.com/cyberscan/scand/internal/logging"
)

// Scan lifecycle statuses. Completed and failed are terminal.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanState is the registry entry for one admitted scan. Timestamps use
// pointer fields so absent values are omitted from status responses.
type ScanState struct {
	ScanID      string     `json:"scan_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Target      string     `json:"target"`
	ScanType    string     `json:"scan_type"`
	ScanSubtype string     `json:"scan_subtype,omitempty"`
	CallbackURL string     `json:"callback_url,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Terminal reports whether the scan has reached a final status.
func (s *ScanState) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

const janitorInterval = time.Minute

// Registry is an in-memory scan state store. Terminal entries are evicted
// after the retention period; capacity bounds total entries so a flood of
// admissions cannot grow memory without limit.
type Registry struct {
	mu        sync.RWMutex
	scans     map[string]*ScanState
	retention time.Duration
	capacity  int

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRegistry creates a registry with the given retention and capacity.
// A zero retention disables eviction; a zero capacity disables the bound.
func NewRegistry(retention time.Duration, capacity int) *Registry {
	return &Registry{
		scans:     make(map[string]*ScanState),
		retention: retention,
		capacity:  capacity,
		stopCh:    make(chan struct{}),
	}
}

// Create admits a new entry. An existing non-terminal entry with the same
// scan ID is never overwritten; a terminal one is replaced so scan IDs can
// be reused after completion.
func (r *Registry) Create(state *ScanState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.scans[state.ScanID]; ok && !existing.Terminal() {
		return errors.ErrDuplicateScan(state.ScanID)
	}

	if r.capacity > 0 && len(r.scans) >= r.capacity {
		r.evictOldestTerminalLocked()
		if len(r.scans) >= r.capacity {
			return errors.ErrCapacityExceeded()
		}
	}

	r.scans[state.ScanID] = state
	return nil
}

// Update applies fn to the entry under the lock. Terminal entries are
// immutable; updates against them are dropped.
func (r *Registry) Update(scanID string, fn func(*ScanState)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.scans[scanID]
	if !ok || state.Terminal() {
		return
	}
	fn(state)
}

// Get returns a snapshot of the entry for the scan ID.
func (r *Registry) Get(scanID string) (ScanState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.scans[scanID]
	if !ok {
		return ScanState{}, errors.ErrScanNotFound(scanID)
	}
	return *state, nil
}

// Count returns the number of tracked entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scans)
}

// StartJanitor launches the background eviction loop. It stops when the
// context is canceled or Stop is called.
func (r *Registry) StartJanitor(ctx context.Context) {
	if r.retention <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				if n := r.evictExpired(time.Now()); n > 0 {
					logging.Debug("Evicted expired scan entries", "count", n)
				}
			}
		}
	}()
}

// Stop terminates the janitor loop.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// evictExpired removes terminal entries whose completion time is older
// than the retention period.
func (r *Registry) evictExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, state := range r.scans {
		if state.Terminal() && state.CompletedAt != nil &&
			now.Sub(*state.CompletedAt) > r.retention {
			delete(r.scans, id)
			evicted++
		}
	}
	return evicted
}

// evictOldestTerminalLocked frees one slot by removing the terminal entry
// with the earliest completion time. Caller holds the write lock.
func (r *Registry) evictOldestTerminalLocked() {
	var oldestID string
	var oldest time.Time

	for id, state := range r.scans {
		if !state.Terminal() || state.CompletedAt == nil {
			continue
		}
		if oldestID == "" || state.CompletedAt.Before(oldest) {
			oldestID = id
			oldest = *state.CompletedAt
		}
	}

	if oldestID != "" {
		delete(r.scans, oldestID)
	}
}
