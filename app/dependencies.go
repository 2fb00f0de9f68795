package app

import (
	"context"

	"github.com/finsight/analysis-router/config"
	"github.com/finsight/analysis-router/handlers"
	"github.com/finsight/analysis-router/middleware"
	"github.com/finsight/analysis-router/services/routing"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	Router *routing.Router

	Auth     *middleware.Auth
	Analysis *handlers.AnalysisHandler
	Admin    *handlers.AdminHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) *Dependencies {
	router := routing.New(cfg.Backends, cfg.Router.HealthCheckInterval, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.Router.AnalyzeRatePerSecond), cfg.Router.AnalyzeBurst)

	// Reload re-reads the roster from the same path the process started
	// with, so operators can edit it in place and reload without restart.
	rosterPath := cfg.RosterPath()
	loadBackends := func() ([]config.BackendConfig, error) {
		return config.LoadBackends(rosterPath)
	}

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Router:   router,
		Auth:     middleware.NewAuth(cfg.Auth, logger),
		Analysis: handlers.NewAnalysisHandler(router, limiter, logger),
		Admin:    handlers.NewAdminHandler(router, loadBackends, logger),
	}

	logger.Info("all dependencies initialized",
		zap.Int("backends", len(cfg.Backends)),
		zap.Bool("auth_enabled", deps.Auth.Enabled()))
	return deps
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return nil
}
