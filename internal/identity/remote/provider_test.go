// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/identity/remote"
	"github.com/taibuivan/notesput/pkg/authclient"
)

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func newServer(t *testing.T, handler http.HandlerFunc) *remote.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return remote.NewProvider(server.URL, nil)
}

func TestGetSession_ForwardsCookies(t *testing.T) {
	expires := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	provider := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, authclient.PathGetSession, request.URL.Path)
		assert.Empty(t, request.Header.Get("Authorization"))
		cookie, err := request.Cookie("notesput.session_token")
		if err != nil || cookie.Value != "tok" {
			writeJSON(writer, http.StatusOK, map[string]any{"data": nil})
			return
		}
		writeJSON(writer, http.StatusOK, map[string]any{"data": authclient.SessionView{
			Session: authclient.Session{ID: "s1", UserID: "u1", ExpiresAt: expires},
			User:    authclient.User{ID: "u1", Email: "a@b.com"},
		}})
	})

	header := http.Header{}
	header.Set("Cookie", "notesput.session_token=tok")
	header.Set("Authorization", "Bearer must-not-leak")

	view, err := provider.GetSession(context.Background(), header)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "s1", view.Session.ID)
	assert.Equal(t, expires, view.Session.ExpiresAt)

	view, err = provider.GetSession(context.Background(), http.Header{})
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestGetSession_ServerErrorIsUnavailable(t *testing.T) {
	provider := newServer(t, func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusBadGateway, map[string]string{"error": "upstream down"})
	})

	_, err := provider.GetSession(context.Background(), http.Header{})
	assert.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestGetSession_TransportFault(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	provider := remote.NewProvider(server.URL, nil)
	server.Close()

	_, err := provider.GetSession(context.Background(), http.Header{})
	assert.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestSignInEmail_PassesCookiesThrough(t *testing.T) {
	provider := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
		var input authclient.SignInRequest
		assert.NoError(t, json.NewDecoder(request.Body).Decode(&input))
		assert.Equal(t, "203.0.113.7", request.Header.Get("X-Forwarded-For"))

		if input.Password != "longenough" {
			writeJSON(writer, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password", "code": "UNAUTHORIZED"})
			return
		}
		http.SetCookie(writer, &http.Cookie{Name: "notesput.session_token", Value: "tok", HttpOnly: true})
		writeJSON(writer, http.StatusOK, map[string]any{"data": authclient.Result{
			Success: true,
			Message: "signed in",
			Session: &authclient.SessionView{Session: authclient.Session{ID: "s1"}, User: authclient.User{ID: "u1"}},
		}})
	})

	result, err := provider.SignInEmail(context.Background(), identity.SignInInput{Email: "a@b.com", Password: "longenough", IPAddress: "203.0.113.7"})
	require.NoError(t, err)
	require.Len(t, result.Cookies, 1)
	assert.Equal(t, "tok", result.Cookies[0].Value)
	assert.Equal(t, "s1", result.View.Session.ID)

	_, err = provider.SignInEmail(context.Background(), identity.SignInInput{Email: "a@b.com", Password: "wrongpass", IPAddress: "203.0.113.7"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestSignUpEmail_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"conflict", http.StatusConflict, identity.ErrEmailTaken},
		{"validation", http.StatusBadRequest, identity.ErrRejected},
		{"unprocessable", http.StatusUnprocessableEntity, identity.ErrRejected},
		{"unavailable", http.StatusServiceUnavailable, identity.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newServer(t, func(writer http.ResponseWriter, _ *http.Request) {
				writeJSON(writer, tt.status, map[string]string{"error": "nope"})
			})

			_, err := provider.SignUpEmail(context.Background(), identity.SignUpInput{Email: "a@b.com", Password: "longenough", Name: "A B"})
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestSignUpEmail_Success(t *testing.T) {
	provider := newServer(t, func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"data": authclient.Result{
			Success: true,
			Message: "account created",
			User:    &authclient.User{ID: "u1", Name: "A B", Email: "a@b.com"},
		}})
	})

	user, err := provider.SignUpEmail(context.Background(), identity.SignUpInput{Email: "a@b.com", Password: "longenough", Name: "A B"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestSignOut_ReturnsClearingCookies(t *testing.T) {
	provider := newServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "notesput.session_token=tok", request.Header.Get("Cookie"))
		http.SetCookie(writer, &http.Cookie{Name: "notesput.session_token", MaxAge: -1})
		writeJSON(writer, http.StatusOK, map[string]any{"data": authclient.Result{Success: true, Message: "signed out"}})
	})

	header := http.Header{}
	header.Set("Cookie", "notesput.session_token=tok")

	cookies, err := provider.SignOut(context.Background(), header)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSignOut_FailureStillClearsCookies(t *testing.T) {
	provider := newServer(t, func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusBadGateway, map[string]string{"error": "upstream down", "code": "INTERNAL_ERROR"})
	})

	header := http.Header{}
	header.Set("Cookie", "notesput.session_token=tok; notesput.session_data=blob")

	cookies, err := provider.SignOut(context.Background(), header)
	require.ErrorIs(t, err, identity.ErrUnavailable)
	require.Len(t, cookies, 2)

	names := map[string]int{}
	for _, cookie := range cookies {
		names[cookie.Name] = cookie.MaxAge
		assert.Empty(t, cookie.Value)
		assert.Equal(t, "/", cookie.Path)
		assert.Contains(t, cookie.String(), "Max-Age=0")
	}
	assert.Equal(t, map[string]int{"notesput.session_token": -1, "notesput.session_data": -1}, names)
}

func TestSignOut_TransportFaultClearsCookies(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	provider := remote.NewProvider(server.URL, nil)
	server.Close()

	header := http.Header{}
	header.Set("Cookie", "notesput.session_token=tok")

	cookies, err := provider.SignOut(context.Background(), header)
	require.ErrorIs(t, err, identity.ErrUnavailable)
	require.Len(t, cookies, 1)
	assert.Equal(t, "notesput.session_token", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
