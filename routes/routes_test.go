package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finsight/analysis-router/app"
	"github.com/finsight/analysis-router/config"
	"github.com/finsight/analysis-router/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDeps(t *testing.T, auth config.AuthConfig) *app.Dependencies {
	t.Helper()
	cfg := &config.Config{
		Auth: auth,
		Router: config.RouterConfig{
			HealthCheckInterval:  time.Hour,
			AnalyzeRatePerSecond: 100,
			AnalyzeBurst:         10,
		},
	}
	return app.NewDependencies(cfg, zap.NewNop())
}

func TestHealthzRoute(t *testing.T) {
	handler := SetupRoutes(testDeps(t, config.AuthConfig{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyzeRouteWithoutBackendsReturnsFallback(t *testing.T) {
	handler := SetupRoutes(testDeps(t, config.AuthConfig{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{"content":"fed raises rates","source":"reuters"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.SentimentNeutral, resp.Data.Sentiment)
	assert.Equal(t, 0.1, resp.Data.Confidence)
}

func TestStatsRoute(t *testing.T) {
	handler := SetupRoutes(testDeps(t, config.AuthConfig{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.RouterStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.TotalBackends)
}

func TestReloadRouteRejectsMissingRoster(t *testing.T) {
	handler := SetupRoutes(testDeps(t, config.AuthConfig{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/config/reload", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPIRequiresTokenWhenAuthEnabled(t *testing.T) {
	handler := SetupRoutes(testDeps(t, config.AuthConfig{Secret: "sekrit"}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Liveness stays public
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	handler := SetupRoutes(testDeps(t, config.AuthConfig{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"endpoint not found"}`, rec.Body.String())
}
