// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Notesput HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the identity provider (local: PostgreSQL, Redis, migrations; remote: HTTP).
//  4. Wire metrics, the auth action layer and the account handlers.
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/notesput/internal/api"
	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/identity/local"
	"github.com/taibuivan/notesput/internal/identity/remote"
	"github.com/taibuivan/notesput/internal/platform/config"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/metrics"
	"github.com/taibuivan/notesput/internal/platform/migration"
	pgstore "github.com/taibuivan/notesput/internal/platform/postgres"
	redisstore "github.com/taibuivan/notesput/internal/platform/redis"
	"github.com/taibuivan/notesput/internal/platform/sec"
	"github.com/taibuivan/notesput/internal/users/account"
	"github.com/taibuivan/notesput/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("provider", cfg.Provider),
	)

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Identity Provider ──────────────────────────────────────────────
	var (
		provider identity.Provider
		health   api.HealthDependencies
	)

	switch cfg.Provider {
	case config.ProviderRemote:
		provider = remote.NewProvider(cfg.AuthProviderURL, nil)

	default:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.SessionIssuer)
		must(log, err, "initialize session cookie signer")

		provider = local.NewProvider(local.NewUserStore(pool), local.NewSessionStore(rdb), tokens, local.Options{
			CookieName:   cfg.SessionCookieName,
			SessionTTL:   cfg.SessionTTL,
			CacheTTL:     cfg.SessionCacheTTL,
			SecureCookie: cfg.IsProduction(),
		})

		health = api.HealthDependencies{
			CheckDatabase: pgstore.Check(pool),
			CheckCache:    redisstore.Check(rdb),
		}
	}

	// ── 4. Domain Wiring ──────────────────────────────────────────────────
	registry := metrics.NewRegistry()
	appMetrics := metrics.New(registry)

	liveness, readiness := api.NewHealthHandlers(health, log)

	authService := auth.NewService(provider, appMetrics, cfg.ProviderTimeout)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(registry),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(account.NewService()),
	}

	// ── 5. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Gate{Reader: provider, Metrics: appMetrics}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger tagged with the service name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
