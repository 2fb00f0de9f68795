// Package health keeps a TTL-cached liveness verdict per backend.
// Verdicts are advisory: they filter which backends the router attempts,
// they never fail a request on their own.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is how long a cached verdict is reused before probes
// go out again.
const DefaultInterval = 300 * time.Second

// Prober is the slice of the backend contract the monitor needs.
type Prober interface {
	ID() string
	CheckHealth(ctx context.Context) bool
}

type entry struct {
	healthy     bool
	lastCheckAt time.Time
}

// Monitor caches per-backend health and refreshes it with concurrent
// probes once the cache expires.
type Monitor struct {
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	probers   []Prober
	entries   map[string]*entry
	lastSweep time.Time
}

// NewMonitor creates a monitor over the given backends. A non-positive
// interval falls back to DefaultInterval.
func NewMonitor(probers []Prober, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m := &Monitor{
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
	m.Reset(probers)
	return m
}

// Reset replaces the monitored backend set and forgets all verdicts.
// New backends start healthy until the first sweep says otherwise.
func (m *Monitor) Reset(probers []Prober) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.probers = probers
	m.entries = make(map[string]*entry, len(probers))
	for _, p := range probers {
		m.entries[p.ID()] = &entry{healthy: true}
	}
	m.lastSweep = time.Time{}
}

// EnsureFresh sweeps all backends if the cached verdicts have expired.
// Within the interval it is a no-op, so callers can invoke it on every
// request without generating probe traffic.
func (m *Monitor) EnsureFresh(ctx context.Context) {
	m.mu.Lock()
	stale := m.lastSweep.IsZero() || m.now().Sub(m.lastSweep) >= m.interval
	m.mu.Unlock()

	if stale {
		m.sweep(ctx)
	}
}

// ForceCheck bypasses the cache and sweeps immediately.
func (m *Monitor) ForceCheck(ctx context.Context) {
	m.sweep(ctx)
}

// sweep probes every backend concurrently. Each probe's failure marks only
// its own backend unhealthy; sibling probes are never aborted. Probes run
// detached from the caller's cancellation: verdicts live in a shared cache,
// so only a backend's own answer may decide them. Per-adapter probe bounds
// still apply.
func (m *Monitor) sweep(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	m.mu.Lock()
	probers := make([]Prober, len(m.probers))
	copy(probers, m.probers)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range probers {
		wg.Add(1)
		go func(p Prober) {
			defer wg.Done()
			healthy := p.CheckHealth(ctx)
			checkedAt := m.now()

			m.mu.Lock()
			if e, ok := m.entries[p.ID()]; ok {
				e.healthy = healthy
				e.lastCheckAt = checkedAt
			}
			m.mu.Unlock()

			m.logger.Debug("health probe",
				zap.String("backend", p.ID()),
				zap.Bool("healthy", healthy))
		}(p)
	}
	wg.Wait()

	m.mu.Lock()
	m.lastSweep = m.now()
	healthy := m.healthyCountLocked()
	total := len(m.entries)
	m.mu.Unlock()

	m.logger.Info("health sweep complete",
		zap.Int("healthy", healthy),
		zap.Int("total", total))
}

// Healthy reports the cached verdict for one backend. Unknown backends
// are unhealthy.
func (m *Monitor) Healthy(backendID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[backendID]; ok {
		return e.healthy
	}
	return false
}

// Verdict returns the cached verdict and when it was last refreshed.
func (m *Monitor) Verdict(backendID string) (bool, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[backendID]; ok {
		return e.healthy, e.lastCheckAt
	}
	return false, time.Time{}
}

// HealthyCount returns how many backends currently hold a healthy verdict.
func (m *Monitor) HealthyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthyCountLocked()
}

func (m *Monitor) healthyCountLocked() int {
	n := 0
	for _, e := range m.entries {
		if e.healthy {
			n++
		}
	}
	return n
}
