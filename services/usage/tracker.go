// Package usage holds per-backend call counters and rolling latency.
// The tracker is purely observational: nothing reads it to make routing
// decisions, only to export diagnostics.
package usage

import (
	"sync"
	"time"
)

// Stats are the accumulated counters for one backend.
type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalTokens     int64
	AvgResponseTime time.Duration
	LastRequestAt   time.Time
}

// Tracker records call outcomes per backend. Each backend owns its own
// entry, so writers for different backends never contend on shared state
// beyond the map lock.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*Stats
	now     func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]*Stats),
		now:     time.Now,
	}
}

// Record notes one call against backendID. The rolling average response
// time only covers successful calls and is updated incrementally:
// avg' = (avg*(n-1) + sample) / n.
func (t *Tracker) Record(backendID string, success bool, elapsed time.Duration, tokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[backendID]
	if !ok {
		s = &Stats{}
		t.entries[backendID] = s
	}

	s.TotalRequests++
	s.LastRequestAt = t.now()

	if !success {
		s.FailedRequests++
		return
	}

	s.SuccessRequests++
	s.TotalTokens += int64(tokens)
	n := s.SuccessRequests
	s.AvgResponseTime = time.Duration((int64(s.AvgResponseTime)*(n-1) + int64(elapsed)) / n)
}

// Get returns a copy of the stats for one backend.
func (t *Tracker) Get(backendID string) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.entries[backendID]; ok {
		return *s
	}
	return Stats{}
}

// Snapshot returns a copy of all per-backend stats.
func (t *Tracker) Snapshot() map[string]Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Stats, len(t.entries))
	for id, s := range t.entries {
		out[id] = *s
	}
	return out
}

// Reset drops all recorded state. Called when configuration reloads and
// backend instances are rebuilt.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*Stats)
}
