// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomtom215/campusrec/internal/api"
	"github.com/tomtom215/campusrec/internal/auth"
	"github.com/tomtom215/campusrec/internal/authz"
	"github.com/tomtom215/campusrec/internal/cache"
	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/database"
	"github.com/tomtom215/campusrec/internal/logging"
	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/overrides"
	"github.com/tomtom215/campusrec/internal/supervisor"
	"github.com/tomtom215/campusrec/internal/supervisor/services"
	"github.com/tomtom215/campusrec/internal/tracing"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // sequential start-up steps
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("admin_auth", cfg.Auth.Enabled()).
		Str("version", version).
		Msg("Starting campusrec")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down tracing")
		}
	}()

	db, err := database.Open(ctx, &cfg.Database, logging.WithComponent("database"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	if err := db.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	store, err := overrides.Open(cfg.Recommender.OverridesPath, logging.WithComponent("overrides"))
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Recommender.OverridesPath).Msg("Failed to open weight override store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing weight override store")
		}
	}()

	rec, err := initRecommend(ctx, cfg, db, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommender")
	}
	metrics.SetAppInfo(version, rec.Engine.Config().Get().Model.Version)

	responseCache, err := cache.New(ctx, &cfg.Cache, logging.WithComponent("cache"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize response cache")
	}
	if responseCache != nil {
		rec.Engine.SetCache(responseCache)
		defer func() {
			if err := responseCache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing response cache")
			}
		}()
	}

	audit := logging.NewAuditLogger(logging.Logger())
	authMW, err := auth.NewMiddleware(&cfg.Auth, audit, api.AuthErrorWriter)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize admin authentication")
	}
	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{PolicyPath: cfg.Auth.PolicyPath})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load admin authorization policy")
	}
	authMW.SetAuthorizer(enforcer)
	if !authMW.Enabled() {
		logging.Warn().Msg("No admin credentials configured, admin endpoints are disabled")
	}

	router := api.NewRouter(api.NewHandler(rec.Engine, authMW), authMW, api.RouterOptions{
		Middleware:     api.ChiMiddlewareConfigFromServer(&cfg.Server),
		ReloadLimiter:  auth.NewRateLimiter(cfg.Auth.ReloadRateLimit, cfg.Auth.ReloadBurst),
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddBackgroundService(services.NewCatalogRefreshService(rec.Refresher, cfg.Recommender.CatalogRefreshInterval, logging.Logger()))
	if cfg.Recommender.WatchConfig && cfg.Recommender.ConfigPath != "" {
		tree.AddBackgroundService(services.NewConfigWatchService(rec.Engine.Config(), cfg.Recommender.ConfigPath, logging.Logger()))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("campusrec stopped")
}
