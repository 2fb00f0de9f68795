package models

import "time"

// BackendStats is a point-in-time snapshot of one backend's usage counters
// and health verdict.
type BackendStats struct {
	BackendID       string        `json:"backend_id"`
	Kind            string        `json:"kind"`
	TotalRequests   int64         `json:"total_requests"`
	SuccessRequests int64         `json:"successful_requests"`
	FailedRequests  int64         `json:"failed_requests"`
	TotalTokens     int64         `json:"total_tokens"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
	LastRequestAt   time.Time     `json:"last_request_at"`
	Healthy         bool          `json:"healthy"`
	LastHealthCheck time.Time     `json:"last_health_check"`
}

// SuccessRate returns the success percentage over all recorded requests.
func (s BackendStats) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.SuccessRequests) / float64(s.TotalRequests) * 100
}

// RouterStats aggregates routing counters with per-backend detail.
type RouterStats struct {
	TotalRequests      int64                   `json:"total_requests"`
	SuccessfulRequests int64                   `json:"successful_requests"`
	FailedRequests     int64                   `json:"failed_requests"`
	FallbackCount      int64                   `json:"fallback_count"`
	ActiveBackends     int                     `json:"active_backends"`
	TotalBackends      int                     `json:"total_backends"`
	Backends           map[string]BackendStats `json:"backends"`
}

// SuccessRate returns the overall routing success percentage.
func (s RouterStats) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.SuccessfulRequests) / float64(s.TotalRequests) * 100
}
