package routes

import (
	"net/http"
	"time"

	"github.com/finsight/analysis-router/app"
	"github.com/finsight/analysis-router/handlers"
	appmw "github.com/finsight/analysis-router/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(appmw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmw.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Process liveness, outside the auth boundary
	r.Get("/healthz", handlers.Healthz)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Auth.RequireAuth)

		r.Post("/analyze", deps.Analysis.Analyze)
		r.Get("/stats", deps.Analysis.Stats)
		r.Post("/health/refresh", deps.Admin.RefreshHealth)
		r.Post("/config/reload", deps.Admin.ReloadConfig)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
