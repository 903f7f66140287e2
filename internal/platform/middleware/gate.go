// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/apperr"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/ctxutil"
	"github.com/taibuivan/notesput/internal/platform/metrics"
	"github.com/taibuivan/notesput/internal/platform/respond"
)

// GateConfig configures [SessionGate].
type GateConfig struct {
	// Reader resolves the session carried by request cookies.
	Reader identity.SessionReader
	// Routes classifies request paths as public or protected. Nil treats
	// every path without a file extension as protected.
	Routes *RouteTable
	// SignInPath is the redirect target for unauthenticated requests.
	SignInPath string
	// Timeout bounds the provider call. Zero means no extra bound.
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// SessionGate intercepts every request and decides between forwarding it and
// redirecting it to sign-in.
//
// # Flow
//  1. Public paths are forwarded without any provider call.
//  2. Protected paths make exactly one GetSession call with the request headers.
//  3. A provider error, a missing session, or a session with ExpiresAt <= now
//     all produce a 307 redirect to SignInPath?callbackUrl=<path>.
//  4. A valid session is attached to the request context and forwarded.
//
// The gate is fail-closed: protected content is never served while session
// state is unknown.
func SessionGate(cfg GateConfig) func(http.Handler) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Routes == nil {
		cfg.Routes = defaultRoutes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if cfg.Routes.Classify(request.URL.Path) == Public {
				cfg.Metrics.RecordGateDecision(metrics.DecisionPublic)
				next.ServeHTTP(writer, request)
				return
			}

			logger := ctxutil.GetLogger(request.Context())

			view, err := lookupSession(request.Context(), cfg.Reader, cfg.Timeout, request.Header)
			if err != nil {
				logger.WarnContext(request.Context(), "session_lookup_failed", slog.Any("error", err))
				cfg.Metrics.RecordGateDecision(metrics.DecisionError)
				redirectToSignIn(writer, request, cfg.SignInPath)
				return
			}

			if !view.ValidAt(cfg.Now()) {
				cfg.Metrics.RecordGateDecision(metrics.DecisionRedirect)
				redirectToSignIn(writer, request, cfg.SignInPath)
				return
			}

			cfg.Metrics.RecordGateDecision(metrics.DecisionAllowed)

			request = request.WithContext(ctxutil.WithSession(request.Context(), view))
			noteRequest(writer, request)
			next.ServeHTTP(writer, request)
		})
	}
}

// lookupSession performs the single provider call for a protected request.
// A panicking provider is reported as an error.
func lookupSession(ctx context.Context, reader identity.SessionReader, timeout time.Duration, header http.Header) (view *identity.SessionView, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			view, err = nil, fmt.Errorf("session lookup panicked: %v", recovered)
		}
	}()

	return reader.GetSession(ctx, header)
}

// SignInLocation builds the sign-in redirect target carrying requestPath as
// the URL-encoded callbackUrl parameter.
func SignInLocation(signInPath, requestPath string) string {
	query := url.Values{constants.CallbackURLParam: []string{requestPath}}
	return signInPath + "?" + query.Encode()
}

func redirectToSignIn(writer http.ResponseWriter, request *http.Request, signInPath string) {
	writer.Header().Set("Cache-Control", "no-store")
	http.Redirect(writer, request, SignInLocation(signInPath, request.URL.Path), http.StatusTemporaryRedirect)
}

// RequireSession rejects requests that reach a handler without a gate-validated
// session. Mount it on protected subrouters as a second line behind SessionGate.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetSession(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
