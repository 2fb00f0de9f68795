package handlers

import "net/http"

// Healthz handles GET /healthz. Process liveness only; backend health
// lives under /api/v1/health/refresh and /api/v1/stats.
func Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
