// Package routing orchestrates analysis requests across the configured
// LLM backends: priority ordering, health filtering, sequential failover,
// and the terminal deterministic fallback.
package routing

import (
	"context"
	"sync"
	"time"

	"github.com/finsight/analysis-router/config"
	"github.com/finsight/analysis-router/models"
	"github.com/finsight/analysis-router/services/backends"
	"github.com/finsight/analysis-router/services/health"
	"github.com/finsight/analysis-router/services/normalize"
	"github.com/finsight/analysis-router/services/usage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// entry pairs a live backend instance with its configuration.
type entry struct {
	cfg     config.BackendConfig
	backend backends.Backend
}

// newBackend constructs backend instances; a variable so tests can
// substitute in-memory fakes.
var newBackend = backends.New

// Router routes one logical request at a time through its candidate list.
// Attempts within a request are strictly sequential: each remote call is
// individually billed, so overlapping attempts would double-charge.
type Router struct {
	logger  *zap.Logger
	usage   *usage.Tracker
	monitor *health.Monitor

	mu      sync.Mutex
	entries []entry

	statsMu            sync.Mutex
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	fallbackCount      int64
}

// New builds a router over the configured backends. Backends that fail to
// construct (unsupported kind, missing credentials) are logged and excluded
// from the pool; they never fail the process.
func New(cfgs []config.BackendConfig, healthInterval time.Duration, logger *zap.Logger) *Router {
	r := &Router{
		logger: logger,
		usage:  usage.NewTracker(),
	}
	entries := r.buildEntries(cfgs)
	r.entries = entries
	r.monitor = health.NewMonitor(probers(entries), healthInterval, logger)
	return r
}

func (r *Router) buildEntries(cfgs []config.BackendConfig) []entry {
	entries := make([]entry, 0, len(cfgs))
	for _, cfg := range cfgs {
		b, err := newBackend(cfg, r.logger)
		if err != nil {
			r.logger.Warn("excluding backend from pool",
				zap.String("backend", cfg.ID),
				zap.Error(err))
			continue
		}
		entries = append(entries, entry{cfg: cfg, backend: b})
	}
	r.logger.Info("initialized backends", zap.Int("count", len(entries)))
	return entries
}

func probers(entries []entry) []health.Prober {
	ps := make([]health.Prober, 0, len(entries))
	for _, e := range entries {
		ps = append(ps, e.backend)
	}
	return ps
}

// Route analyzes one request. It never returns an error: when every
// candidate fails, or none are available, the caller still receives the
// deterministic fallback result.
func (r *Router) Route(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	requestID := uuid.NewString()

	r.statsMu.Lock()
	r.totalRequests++
	r.statsMu.Unlock()

	r.monitor.EnsureFresh(ctx)

	candidates := r.candidates()
	if len(candidates) == 0 {
		r.logger.Error("no healthy backends available", zap.String("request_id", requestID))
		r.statsMu.Lock()
		r.failedRequests++
		r.statsMu.Unlock()
		return fallbackResult("all AI backends are unavailable")
	}

	prompt := buildPrompt(req, time.Now())

	for _, c := range candidates {
		if ctx.Err() != nil {
			// Caller gave up; abandon remaining candidates
			r.logger.Warn("routing cancelled",
				zap.String("request_id", requestID),
				zap.Error(ctx.Err()))
			break
		}

		result, ok := r.attempt(ctx, requestID, c, prompt)
		if ok {
			r.statsMu.Lock()
			r.successfulRequests++
			r.statsMu.Unlock()
			return result
		}
	}

	r.logger.Error("all backends exhausted, returning fallback",
		zap.String("request_id", requestID),
		zap.Int("candidates", len(candidates)))

	r.statsMu.Lock()
	r.failedRequests++
	r.fallbackCount++
	r.statsMu.Unlock()

	return fallbackResult("AI analysis failed on every available backend")
}

// attempt runs one candidate end to end: submit, normalize, validate.
// Any failure is recorded against the backend and reported as a skip.
func (r *Router) attempt(ctx context.Context, requestID string, c entry, prompt string) (models.AnalysisResult, bool) {
	start := time.Now()
	completion, err := c.backend.Submit(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		r.usage.Record(c.cfg.ID, false, elapsed, 0)
		r.logger.Warn("backend attempt failed",
			zap.String("request_id", requestID),
			zap.String("backend", c.cfg.ID),
			zap.String("code", string(backends.ErrorCode(err))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return models.AnalysisResult{}, false
	}

	outcome := normalize.Normalize(completion.Text)
	if err := outcome.Result.Validate(); err != nil {
		r.usage.Record(c.cfg.ID, false, elapsed, completion.TotalTokens)
		r.logger.Warn("backend returned invalid result",
			zap.String("request_id", requestID),
			zap.String("backend", c.cfg.ID),
			zap.Error(err))
		return models.AnalysisResult{}, false
	}

	r.usage.Record(c.cfg.ID, true, elapsed, completion.TotalTokens)
	r.logger.Info("analysis complete",
		zap.String("request_id", requestID),
		zap.String("backend", c.cfg.ID),
		zap.String("path", string(outcome.Path)),
		zap.Duration("elapsed", elapsed))
	return outcome.Result, true
}

// candidates returns the enabled, healthy backends in priority order.
// Configuration loading already sorted entries ascending by priority with
// file order breaking ties.
func (r *Router) candidates() []entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.cfg.Enabled && r.monitor.Healthy(e.cfg.ID) {
			out = append(out, e)
		}
	}
	return out
}

// ForceHealthCheck invalidates cached health verdicts and probes all
// backends immediately.
func (r *Router) ForceHealthCheck(ctx context.Context) {
	r.monitor.ForceCheck(ctx)
}

// Reload tears down the current backend pool, rebuilds it from the new
// configuration, and resets health and usage state.
func (r *Router) Reload(cfgs []config.BackendConfig) {
	entries := r.buildEntries(cfgs)

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	r.monitor.Reset(probers(entries))
	r.usage.Reset()
	r.logger.Info("configuration reloaded", zap.Int("backends", len(entries)))
}

// Stats returns aggregate routing counters with per-backend detail.
func (r *Router) Stats() models.RouterStats {
	r.statsMu.Lock()
	stats := models.RouterStats{
		TotalRequests:      r.totalRequests,
		SuccessfulRequests: r.successfulRequests,
		FailedRequests:     r.failedRequests,
		FallbackCount:      r.fallbackCount,
	}
	r.statsMu.Unlock()

	r.mu.Lock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	stats.TotalBackends = len(entries)
	stats.ActiveBackends = r.monitor.HealthyCount()
	stats.Backends = make(map[string]models.BackendStats, len(entries))

	snapshot := r.usage.Snapshot()
	for _, e := range entries {
		u := snapshot[e.cfg.ID]
		healthy, lastCheck := r.monitor.Verdict(e.cfg.ID)
		stats.Backends[e.cfg.ID] = models.BackendStats{
			BackendID:       e.cfg.ID,
			Kind:            e.cfg.Kind,
			TotalRequests:   u.TotalRequests,
			SuccessRequests: u.SuccessRequests,
			FailedRequests:  u.FailedRequests,
			TotalTokens:     u.TotalTokens,
			AvgResponseTime: u.AvgResponseTime,
			LastRequestAt:   u.LastRequestAt,
			Healthy:         healthy,
			LastHealthCheck: lastCheck,
		}
	}
	return stats
}
