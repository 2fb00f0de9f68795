package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finsight/analysis-router/middleware"
	"github.com/finsight/analysis-router/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AnalysisHandler serves sentiment analysis requests.
type AnalysisHandler struct {
	router  AnalysisRouter
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewAnalysisHandler creates an analysis handler. The limiter throttles the
// analyze endpoint only; admin endpoints are cheap and stay unthrottled.
func NewAnalysisHandler(router AnalysisRouter, limiter *rate.Limiter, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		router:  router,
		limiter: limiter,
		logger:  logger,
	}
}

// Analyze handles POST /api/v1/analyze.
// The response is always a valid analysis result; backend failures surface
// as the low-confidence fallback, never as a 5xx.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		h.logger.Warn("analyze request throttled",
			zap.String("request_id", middleware.GetRequestID(r.Context())))
		respondError(w, http.StatusTooManyRequests, "rate_limited", "Too many analysis requests, retry later")
		return
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	if err := models.ValidateRequest(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result := h.router.Route(r.Context(), req)
	respondJSON(w, http.StatusOK, SuccessResponse{Data: result})
}

// Stats handles GET /api/v1/stats.
func (h *AnalysisHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuccessResponse{Data: h.router.Stats()})
}
