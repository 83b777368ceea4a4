package orchestrator

import (
	"testing"
	"time"

	"github.com/cyberscan/scand/internal/errors"
)

func newState(scanID, status string) *ScanState {
	return &ScanState{
		ScanID:    scanID,
		Status:    status,
		Target:    "host-1",
		ScanType:  "basic",
		StartedAt: time.Now().UTC(),
	}
}

func terminalState(scanID string, completedAt time.Time) *ScanState {
	s := newState(scanID, StatusCompleted)
	s.Progress = 100
	s.CompletedAt = &completedAt
	return s
}

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(time.Hour, 10)

	if err := r.Create(newState("a", StatusRunning)); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	state, err := r.Get("a")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if state.ScanID != "a" || state.Status != StatusRunning {
		t.Errorf("unexpected state: %+v", state)
	}

	if _, err := r.Get("missing"); !errors.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND for missing entry, got %v", err)
	}
}

func TestRegistryDuplicateNonTerminal(t *testing.T) {
	r := NewRegistry(time.Hour, 10)

	if err := r.Create(newState("a", StatusRunning)); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	err := r.Create(newState("a", StatusRunning))
	if !errors.IsCode(err, errors.CodeDuplicateScan) {
		t.Errorf("expected DUPLICATE_SCAN, got %v", err)
	}
}

func TestRegistryTerminalReplacement(t *testing.T) {
	r := NewRegistry(time.Hour, 10)

	if err := r.Create(terminalState("a", time.Now())); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := r.Create(newState("a", StatusRunning)); err != nil {
		t.Errorf("terminal entry should be replaceable, got %v", err)
	}
}

func TestRegistryTerminalImmutable(t *testing.T) {
	r := NewRegistry(time.Hour, 10)

	done := time.Now().UTC()
	if err := r.Create(terminalState("a", done)); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	r.Update("a", func(s *ScanState) {
		s.Status = StatusRunning
		s.Progress = 50
	})

	state, _ := r.Get("a")
	if state.Status != StatusCompleted || state.Progress != 100 {
		t.Errorf("terminal entry was mutated: %+v", state)
	}
}

func TestRegistryUpdateProgress(t *testing.T) {
	r := NewRegistry(time.Hour, 10)
	_ = r.Create(newState("a", StatusRunning))

	r.Update("a", func(s *ScanState) { s.Progress = 25 })
	r.Update("a", func(s *ScanState) { s.Progress = 75 })

	state, _ := r.Get("a")
	if state.Progress != 75 {
		t.Errorf("progress = %d, want 75", state.Progress)
	}
}

func TestRegistryEvictExpired(t *testing.T) {
	r := NewRegistry(time.Minute, 10)

	old := time.Now().Add(-2 * time.Minute)
	_ = r.Create(terminalState("old", old))
	_ = r.Create(terminalState("fresh", time.Now()))
	_ = r.Create(newState("running", StatusRunning))

	evicted := r.evictExpired(time.Now())
	if evicted != 1 {
		t.Fatalf("evicted %d entries, want 1", evicted)
	}

	if _, err := r.Get("old"); err == nil {
		t.Error("expired terminal entry still present")
	}
	if _, err := r.Get("fresh"); err != nil {
		t.Error("fresh terminal entry was evicted")
	}
	if _, err := r.Get("running"); err != nil {
		t.Error("running entry was evicted")
	}
}

func TestRegistryCapacity(t *testing.T) {
	r := NewRegistry(time.Hour, 2)

	_ = r.Create(newState("a", StatusRunning))
	_ = r.Create(newState("b", StatusRunning))

	err := r.Create(newState("c", StatusRunning))
	if !errors.IsCode(err, errors.CodeCapacity) {
		t.Errorf("expected CAPACITY at the bound, got %v", err)
	}
}

func TestRegistryCapacityEvictsOldestTerminal(t *testing.T) {
	r := NewRegistry(time.Hour, 2)

	_ = r.Create(terminalState("oldest", time.Now().Add(-time.Hour)))
	_ = r.Create(terminalState("newer", time.Now()))

	if err := r.Create(newState("c", StatusRunning)); err != nil {
		t.Fatalf("expected terminal eviction to free a slot, got %v", err)
	}

	if _, err := r.Get("oldest"); err == nil {
		t.Error("oldest terminal entry should have been evicted")
	}
	if _, err := r.Get("newer"); err != nil {
		t.Error("newer terminal entry should survive")
	}
}

func TestRegistryCount(t *testing.T) {
	r := NewRegistry(time.Hour, 10)
	if r.Count() != 0 {
		t.Errorf("empty registry count = %d", r.Count())
	}
	_ = r.Create(newState("a", StatusRunning))
	_ = r.Create(newState("b", StatusRunning))
	if r.Count() != 2 {
		t.Errorf("count = %d, want 2", r.Count())
	}
}
