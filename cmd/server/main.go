// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/salesradar/internal/api"
	"github.com/tomtom215/salesradar/internal/config"
	"github.com/tomtom215/salesradar/internal/events"
	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/middleware"
	"github.com/tomtom215/salesradar/internal/store"
	"github.com/tomtom215/salesradar/internal/supervisor"
	"github.com/tomtom215/salesradar/internal/supervisor/services"
	"github.com/tomtom215/salesradar/internal/targeting"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("data_path", cfg.Data.Path).
		Str("duckdb_path", cfg.Database.Path).
		Bool("train_on_load", cfg.Data.TrainOnLoad).
		Bool("admin_enabled", cfg.Security.AdminEnabled()).
		Msg("Starting Salesradar with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Salesradar stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	st, err := store.Open(&cfg.Database, store.WithSheet(cfg.Data.Sheet))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	eng, err := targeting.NewEngine(buildEngineConfig(&cfg.Targeting), logging.WithComponent("targeting"))
	if err != nil {
		return fmt.Errorf("create targeting engine: %w", err)
	}

	resultCache := newResultCache(&cfg.Cache)
	bus := events.NewBus(events.DefaultConfig(), logging.WithComponent("events"))
	wireRebuildEvents(eng, bus, resultCache, logging.WithComponent("cache"))

	reloader := services.NewReloadService(st, eng, services.ReloadServiceConfigFrom(&cfg.Data), logging.WithComponent("reload"))

	audit := logging.NewAuditLogger(logging.Logger())
	handlerOpts := []api.HandlerOption{
		api.WithReloader(reloader),
		api.WithAuditLogger(audit),
		api.WithVersion(version),
	}
	if resultCache != nil {
		handlerOpts = append(handlerOpts, api.WithCache(resultCache))
	}
	handler := api.NewHandler(eng, handlerOpts...)

	var adminAuth *middleware.AdminAuth
	if cfg.Security.AdminEnabled() {
		adminAuth, err = middleware.NewAdminAuth(cfg.Security.AdminUsername, cfg.Security.AdminPasswordHash, audit)
		if err != nil {
			return fmt.Errorf("admin auth: %w", err)
		}
	} else {
		logging.Info().Msg("Admin endpoints disabled (ADMIN_USERNAME not set)")
	}

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)), adminAuth, cfg.Server.Timeout)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: admin reloads last as long as training does.
		// Query routes are bounded by the router's timeout middleware.
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(reloader)
	tree.AddMessagingService(bus)
	if resultCache != nil {
		tree.AddMessagingService(resultCache)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("supervisor tree: %w", err)
		}
		cancel()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if err := bus.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing event bus")
	}
	return runErr
}
