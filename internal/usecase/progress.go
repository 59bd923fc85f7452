package usecase

import (
	"sync"
	"time"

	"ratebridge-backend/internal/domain"
)

// ProgressTracker is the run-status handle polled by HTTP callers while an
// orchestration run is in flight. It is an injected, mutex-guarded struct,
// never a package global: the single active run writes, many pollers read.
type ProgressTracker struct {
	mu   sync.Mutex
	snap domain.ProgressSnapshot
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// MarkStart resets all state for a fresh run.
func (t *ProgressTracker) MarkStart(totalZones int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = domain.ProgressSnapshot{
		Started:    true,
		StartTime:  time.Now(),
		TotalZones: totalZones,
		LastUpdate: time.Now(),
	}
}

// ReportZone appends one completed zone result.
func (t *ProgressTracker) ReportZone(result domain.ZoneResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Completed = append(t.snap.Completed, result)
	t.snap.LastUpdate = time.Now()
}

// MarkDone is called on every exit path, success or error; re-marking a
// finished run is harmless.
func (t *ProgressTracker) MarkDone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Done = true
	t.snap.LastUpdate = time.Now()
}

func (t *ProgressTracker) MarkAborted(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Aborted = true
	t.snap.AbortReason = reason
	t.snap.LastUpdate = time.Now()
}

// Snapshot returns a deep copy; readers must never share the live slice.
func (t *ProgressTracker) Snapshot() domain.ProgressSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.snap
	snap.Completed = make([]domain.ZoneResult, len(t.snap.Completed))
	copy(snap.Completed, t.snap.Completed)
	return snap
}

// AbortFlag is the cooperative cancellation signal. The orchestrator polls
// it between zones only, so abort latency is bounded by the current zone's
// in-flight deployment.
type AbortFlag struct {
	mu      sync.Mutex
	aborted bool
	reason  string
	at      time.Time
}

func NewAbortFlag() *AbortFlag {
	return &AbortFlag{}
}

func (f *AbortFlag) Abort(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
	f.reason = reason
	f.at = time.Now()
}

func (f *AbortFlag) IsAborted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aborted
}

func (f *AbortFlag) Reason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason
}

// Reset clears the flag at the start of a new run.
func (f *AbortFlag) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = false
	f.reason = ""
	f.at = time.Time{}
}
