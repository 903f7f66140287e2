// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost presentation layer boundary.
  - It is the composition root for the chi router and the session gate.
  - Only this package and cmd/api import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/apperr"
	"github.com/taibuivan/notesput/internal/platform/config"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/metrics"
	"github.com/taibuivan/notesput/internal/platform/middleware"
	"github.com/taibuivan/notesput/internal/platform/respond"
	"github.com/taibuivan/notesput/internal/users/account"
	"github.com/taibuivan/notesput/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler.
	Readiness http.HandlerFunc

	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler

	// Auth serves the /api/auth namespace.
	Auth *auth.Handler

	// Account serves /dashboard and /profile.
	Account *account.Handler
}

// Gate carries what the session gate needs besides configuration.
type Gate struct {
	Reader  identity.SessionReader
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The session gate runs last so that rejected requests are still logged,
// rate limited and answered with CORS headers.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, gate Gate, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.SessionGate(middleware.GateConfig{
		Reader:     gate.Reader,
		Routes:     cfg.Routes(),
		SignInPath: cfg.SignInPath,
		Timeout:    cfg.ProviderTimeout,
		Now:        gate.Now,
		Metrics:    gate.Metrics,
	}))

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	r.Mount("/api/auth", h.Auth.Routes())

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireSession)
		h.Account.Mount(protected)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
