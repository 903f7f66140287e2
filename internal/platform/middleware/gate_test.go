// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/identity/identitytest"
	"github.com/taibuivan/notesput/internal/platform/ctxutil"
	"github.com/taibuivan/notesput/internal/platform/metrics"
	"github.com/taibuivan/notesput/internal/platform/middleware"
)

var gateNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newGate wraps a handler that records the session it sees.
func newGate(t *testing.T, provider *identitytest.Provider, m *metrics.Metrics) (http.Handler, *bool, **identity.SessionView) {
	t.Helper()

	reached := false
	var seen *identity.SessionView

	handler := middleware.SessionGate(middleware.GateConfig{
		Reader:     provider,
		Routes:     middleware.NewRouteTable(defaultPublicRoutes, defaultAssetPrefixes),
		SignInPath: "/signin",
		Timeout:    time.Second,
		Now:        func() time.Time { return gateNow },
		Metrics:    m,
	})(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reached = true
		seen = ctxutil.GetSession(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	return handler, &reached, &seen
}

func sessionExpiringAt(expiresAt time.Time) func(context.Context, http.Header) (*identity.SessionView, error) {
	return func(context.Context, http.Header) (*identity.SessionView, error) {
		return &identity.SessionView{
			Session: identity.Session{ID: "s1", UserID: "u1", CreatedAt: expiresAt.Add(-time.Hour), ExpiresAt: expiresAt},
			User:    identity.User{ID: "u1", Email: "a@b.com"},
		}, nil
	}
}

func serve(handler http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestSessionGate_PublicPathsSkipProvider asserts public paths pass through
without a single provider call.
*/
func TestSessionGate_PublicPathsSkipProvider(t *testing.T) {
	provider := &identitytest.Provider{Panic: "must not be called"}
	handler, reached, _ := newGate(t, provider, nil)

	for _, target := range []string{"/", "/signin", "/signup", "/forgot-password", "/api/auth/get-session", "/static/app.js", "/favicon.ico"} {
		*reached = false
		recorder := serve(handler, target)
		assert.Equal(t, http.StatusOK, recorder.Code, target)
		assert.True(t, *reached, target)
	}

	assert.Equal(t, 0, provider.GetSessionCalls())
}

/*
TestSessionGate_RedirectsWithoutSession covers the /dashboard scenario and
the general protected-path property.
*/
func TestSessionGate_RedirectsWithoutSession(t *testing.T) {
	provider := &identitytest.Provider{}
	handler, reached, _ := newGate(t, provider, nil)

	recorder := serve(handler, "/dashboard")
	assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	assert.Equal(t, "/signin?callbackUrl=%2Fdashboard", recorder.Header().Get("Location"))
	assert.False(t, *reached)
	assert.Equal(t, 1, provider.GetSessionCalls())

	for _, target := range []string{"/profile", "/dashboard/notes/42", "/api/notes"} {
		recorder := serve(handler, target)
		require.Equal(t, http.StatusTemporaryRedirect, recorder.Code, target)

		location, err := url.Parse(recorder.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/signin", location.Path)
		assert.Equal(t, target, location.Query().Get("callbackUrl"))
	}
}

/*
TestSessionGate_NilRoutesFailClosed builds the gate without a route table.
*/
func TestSessionGate_NilRoutesFailClosed(t *testing.T) {
	provider := &identitytest.Provider{}
	handler := middleware.SessionGate(middleware.GateConfig{
		Reader:     provider,
		SignInPath: "/signin",
	})(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	var recorder *httptest.ResponseRecorder
	require.NotPanics(t, func() { recorder = serve(handler, "/dashboard") })
	assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	assert.Equal(t, 1, provider.GetSessionCalls())

	recorder = serve(handler, "/favicon.ico")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, provider.GetSessionCalls())
}

/*
TestSessionGate_ExpiredSessionDenied treats expiresAt <= now as absent.
*/
func TestSessionGate_ExpiredSessionDenied(t *testing.T) {
	for name, expiresAt := range map[string]time.Time{
		"expired":        gateNow.Add(-time.Second),
		"expires_at_now": gateNow,
	} {
		t.Run(name, func(t *testing.T) {
			provider := &identitytest.Provider{GetSessionFunc: sessionExpiringAt(expiresAt)}
			handler, reached, _ := newGate(t, provider, nil)

			recorder := serve(handler, "/dashboard")
			assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
			assert.False(t, *reached)
		})
	}
}

/*
TestSessionGate_ValidSessionAllowed forwards the request and exposes the session.
*/
func TestSessionGate_ValidSessionAllowed(t *testing.T) {
	provider := &identitytest.Provider{GetSessionFunc: sessionExpiringAt(gateNow.Add(time.Hour))}
	handler, reached, seen := newGate(t, provider, nil)

	recorder := serve(handler, "/dashboard", &http.Cookie{Name: "notesput.session_token", Value: "tok"})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, *reached)
	require.NotNil(t, *seen)
	assert.Equal(t, "u1", (*seen).User.ID)

	assert.Contains(t, provider.LastHeader().Get("Cookie"), "notesput.session_token=tok")
	assert.Equal(t, 1, provider.GetSessionCalls())
}

/*
TestSessionGate_ProviderFaultDenied fails closed on errors and panics.
*/
func TestSessionGate_ProviderFaultDenied(t *testing.T) {
	t.Run("transport_error", func(t *testing.T) {
		provider := &identitytest.Provider{
			GetSessionFunc: func(context.Context, http.Header) (*identity.SessionView, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
		}
		handler, reached, _ := newGate(t, provider, nil)

		recorder := serve(handler, "/dashboard")
		assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
		assert.Equal(t, "/signin?callbackUrl=%2Fdashboard", recorder.Header().Get("Location"))
		assert.False(t, *reached)
	})

	t.Run("panic", func(t *testing.T) {
		provider := &identitytest.Provider{Panic: "boom"}
		handler, reached, _ := newGate(t, provider, nil)

		var recorder *httptest.ResponseRecorder
		assert.NotPanics(t, func() { recorder = serve(handler, "/dashboard") })
		assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
		assert.False(t, *reached)
	})

	t.Run("timeout", func(t *testing.T) {
		provider := &identitytest.Provider{
			GetSessionFunc: func(ctx context.Context, _ http.Header) (*identity.SessionView, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		handler := middleware.SessionGate(middleware.GateConfig{
			Reader:     provider,
			Routes:     middleware.NewRouteTable(defaultPublicRoutes, defaultAssetPrefixes),
			SignInPath: "/signin",
			Timeout:    10 * time.Millisecond,
		})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

		recorder := serve(handler, "/profile")
		assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	})
}

/*
TestSessionGate_Metrics counts each decision.
*/
func TestSessionGate_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	provider := &identitytest.Provider{}
	handler, _, _ := newGate(t, provider, m)

	serve(handler, "/")
	serve(handler, "/dashboard")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues(metrics.DecisionPublic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues(metrics.DecisionRedirect)))
}

func TestSignInLocation(t *testing.T) {
	assert.Equal(t, "/signin?callbackUrl=%2Fnotes%2F1", middleware.SignInLocation("/signin", "/notes/1"))
}

func TestRequireSession(t *testing.T) {
	handler := middleware.RequireSession(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	request = request.WithContext(ctxutil.WithSession(request.Context(), &identity.SessionView{}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
