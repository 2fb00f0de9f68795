package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finsight/analysis-router/config"
	"github.com/finsight/analysis-router/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type stubRouter struct {
	result       models.AnalysisResult
	stats        models.RouterStats
	routed       []models.AnalysisRequest
	forceChecks  int
	reloadedWith []config.BackendConfig
}

func (s *stubRouter) Route(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	s.routed = append(s.routed, req)
	return s.result
}

func (s *stubRouter) ForceHealthCheck(ctx context.Context) { s.forceChecks++ }

func (s *stubRouter) Reload(cfgs []config.BackendConfig) { s.reloadedWith = cfgs }

func (s *stubRouter) Stats() models.RouterStats { return s.stats }

func validResult() models.AnalysisResult {
	return models.AnalysisResult{
		ImpactScore:       0.6,
		MarketPrediction:  "rotation into defensives",
		TradingSuggestion: "reduce exposure",
		Sentiment:         models.SentimentNegative,
		Confidence:        0.7,
		KeyPoints:         []string{"guidance cut"},
	}
}

func analyzeRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
}

func TestAnalyzeSuccess(t *testing.T) {
	router := &stubRouter{result: validResult()}
	h := NewAnalysisHandler(router, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Analyze(rec, analyzeRequest(`{"content":"fed raises rates","source":"reuters"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, router.routed, 1)
	assert.Equal(t, "reuters", router.routed[0].Source)

	var resp struct {
		Data models.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.SentimentNegative, resp.Data.Sentiment)
	assert.Equal(t, 0.6, resp.Data.ImpactScore)
}

func TestAnalyzeRejectsMalformedBody(t *testing.T) {
	router := &stubRouter{result: validResult()}
	h := NewAnalysisHandler(router, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Analyze(rec, analyzeRequest(`{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, router.routed)
}

func TestAnalyzeRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing content", `{"source":"reuters"}`},
		{"missing source", `{"content":"fed raises rates"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := &stubRouter{result: validResult()}
			h := NewAnalysisHandler(router, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

			rec := httptest.NewRecorder()
			h.Analyze(rec, analyzeRequest(tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, router.routed)
		})
	}
}

func TestAnalyzeThrottled(t *testing.T) {
	router := &stubRouter{result: validResult()}
	// Burst of one and no refill: the second request must be rejected
	h := NewAnalysisHandler(router, rate.NewLimiter(0, 1), zap.NewNop())

	first := httptest.NewRecorder()
	h.Analyze(first, analyzeRequest(`{"content":"c","source":"s"}`))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.Analyze(second, analyzeRequest(`{"content":"c","source":"s"}`))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Len(t, router.routed, 1)
}

func TestStats(t *testing.T) {
	router := &stubRouter{stats: models.RouterStats{
		TotalRequests:      7,
		SuccessfulRequests: 5,
		FailedRequests:     2,
		ActiveBackends:     2,
		TotalBackends:      3,
	}}
	h := NewAnalysisHandler(router, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.RouterStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Data.TotalRequests)
	assert.Equal(t, 2, resp.Data.ActiveBackends)
}

func TestRefreshHealth(t *testing.T) {
	router := &stubRouter{stats: models.RouterStats{
		ActiveBackends: 1,
		TotalBackends:  2,
		Backends: map[string]models.BackendStats{
			"openai": {BackendID: "openai", Healthy: true},
			"gemini": {BackendID: "gemini", Healthy: false},
		},
	}}
	h := NewAdminHandler(router, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.RefreshHealth(rec, httptest.NewRequest(http.MethodPost, "/api/v1/health/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, router.forceChecks)

	var resp struct {
		Data struct {
			HealthyBackends int             `json:"healthy_backends"`
			TotalBackends   int             `json:"total_backends"`
			Backends        map[string]bool `json:"backends"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.HealthyBackends)
	assert.True(t, resp.Data.Backends["openai"])
	assert.False(t, resp.Data.Backends["gemini"])
}

func TestReloadConfig(t *testing.T) {
	router := &stubRouter{}
	roster := []config.BackendConfig{{ID: "openai", Kind: "openai"}}
	h := NewAdminHandler(router, func() ([]config.BackendConfig, error) {
		return roster, nil
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ReloadConfig(rec, httptest.NewRequest(http.MethodPost, "/api/v1/config/reload", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, roster, router.reloadedWith)
}

func TestReloadConfigKeepsPoolOnError(t *testing.T) {
	router := &stubRouter{}
	h := NewAdminHandler(router, func() ([]config.BackendConfig, error) {
		return nil, errors.New("roster unreadable")
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ReloadConfig(rec, httptest.NewRequest(http.MethodPost, "/api/v1/config/reload", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, router.reloadedWith)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
