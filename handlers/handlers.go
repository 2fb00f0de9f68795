package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/finsight/analysis-router/config"
	"github.com/finsight/analysis-router/models"
)

// AnalysisRouter is the slice of the routing service the HTTP layer needs.
type AnalysisRouter interface {
	Route(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult
	ForceHealthCheck(ctx context.Context)
	Reload(cfgs []config.BackendConfig)
	Stats() models.RouterStats
}

// Common error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Common success response structure
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, statusCode int, err string, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:   err,
		Message: message,
	})
}
