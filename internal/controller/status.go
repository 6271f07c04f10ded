package controller

import (
	"sync"
	"time"
)

// Status is the process-wide synchronization state. The reconcile loop is the
// only writer; the metrics and health responders read snapshots concurrently.
// Updates happen at quiescent points (end of a per-source attempt, end of a
// tick), so readers may observe slightly stale but never torn values.
type Status struct {
	mu       sync.RWMutex
	total    uint64
	success  uint64
	failed   uint64
	lastSync time.Time
}

// Snapshot is a consistent read of Status.
type Snapshot struct {
	Total    uint64
	Success  uint64
	Failed   uint64
	LastSync time.Time
}

// NewStatus returns a zeroed Status.
func NewStatus() *Status {
	return &Status{}
}

// MarkUp publishes the running indicator. Called once when the loop starts.
func (s *Status) MarkUp() {
	syncUp.Set(1)
}

// RecordAttempt folds one per-source sync outcome into the counters and the
// corresponding metric series.
func (s *Status) RecordAttempt(err error) {
	s.mu.Lock()
	s.total++
	if err != nil {
		s.failed++
	} else {
		s.success++
	}
	s.mu.Unlock()

	syncTotal.Inc()
	if err != nil {
		syncFailureTotal.Inc()
	} else {
		syncSuccessTotal.Inc()
	}
}

// RecordTick publishes the heartbeat for a completed tick.
func (s *Status) RecordTick(now time.Time) {
	s.mu.Lock()
	s.lastSync = now
	s.mu.Unlock()

	lastSyncTimestamp.Set(float64(now.Unix()))
}

// Snapshot returns a consistent copy of the current state.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Total:    s.total,
		Success:  s.success,
		Failed:   s.failed,
		LastSync: s.lastSync,
	}
}
