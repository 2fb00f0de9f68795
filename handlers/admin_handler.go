package handlers

import (
	"net/http"

	"github.com/finsight/analysis-router/config"
	"github.com/finsight/analysis-router/middleware"
	"go.uber.org/zap"
)

// AdminHandler serves operational endpoints: health refresh and
// configuration reload.
type AdminHandler struct {
	router       AnalysisRouter
	loadBackends func() ([]config.BackendConfig, error)
	logger       *zap.Logger
}

// NewAdminHandler creates an admin handler. loadBackends re-reads the
// backend roster; injected so tests do not touch the filesystem.
func NewAdminHandler(router AnalysisRouter, loadBackends func() ([]config.BackendConfig, error), logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		router:       router,
		loadBackends: loadBackends,
		logger:       logger,
	}
}

// RefreshHealth handles POST /api/v1/health/refresh. It probes every
// backend immediately and returns the fresh per-backend verdicts.
func (h *AdminHandler) RefreshHealth(w http.ResponseWriter, r *http.Request) {
	h.router.ForceHealthCheck(r.Context())

	stats := h.router.Stats()
	verdicts := make(map[string]bool, len(stats.Backends))
	for id, b := range stats.Backends {
		verdicts[id] = b.Healthy
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: map[string]interface{}{
		"healthy_backends": stats.ActiveBackends,
		"total_backends":   stats.TotalBackends,
		"backends":         verdicts,
	}})
}

// ReloadConfig handles POST /api/v1/config/reload. On a roster read or
// validation error the running pool is left untouched.
func (h *AdminHandler) ReloadConfig(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	cfgs, err := h.loadBackends()
	if err != nil {
		h.logger.Error("config reload rejected",
			zap.String("request_id", requestID),
			zap.Error(err))
		respondError(w, http.StatusUnprocessableEntity, "invalid_config", err.Error())
		return
	}

	h.router.Reload(cfgs)
	h.logger.Info("config reloaded",
		zap.String("request_id", requestID),
		zap.Int("backends", len(cfgs)))

	respondJSON(w, http.StatusOK, SuccessResponse{Data: map[string]int{
		"backends": len(cfgs),
	}})
}
