// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/notesput/pkg/authclient"
)

// fakeAuthServer speaks the /api/auth envelope with a single hard-coded account.
type fakeAuthServer struct {
	getSessionCalls atomic.Int32
}

func (s *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(writer http.ResponseWriter, status int, payload any) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_ = json.NewEncoder(writer).Encode(payload)
	}

	mux.HandleFunc("POST "+authclient.PathSignInEmail, func(writer http.ResponseWriter, request *http.Request) {
		var input authclient.SignInRequest
		_ = json.NewDecoder(request.Body).Decode(&input)
		if input.Password != "longenough" {
			writeJSON(writer, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password", "code": "UNAUTHORIZED"})
			return
		}
		http.SetCookie(writer, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		writeJSON(writer, http.StatusOK, map[string]any{"data": authclient.Result{Success: true, Message: "signed in"}})
	})

	mux.HandleFunc("POST "+authclient.PathSignUpEmail, func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"code":    "VALIDATION_ERROR",
			"details": []authclient.FieldError{{Field: "password", Message: "Password must be at least 8 characters long"}},
		})
	})

	mux.HandleFunc("GET "+authclient.PathGetSession, func(writer http.ResponseWriter, request *http.Request) {
		s.getSessionCalls.Add(1)
		if cookie, err := request.Cookie("sid"); err == nil && cookie.Value == "abc" {
			writeJSON(writer, http.StatusOK, map[string]any{"data": signedIn})
			return
		}
		writeJSON(writer, http.StatusOK, map[string]any{"data": nil})
	})

	mux.HandleFunc("POST "+authclient.PathSignOut, func(writer http.ResponseWriter, _ *http.Request) {
		http.SetCookie(writer, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
		writeJSON(writer, http.StatusOK, map[string]any{"data": authclient.Result{Success: true, Message: "signed out"}})
	})

	return mux
}

func newTestClient(t *testing.T) (*authclient.Client, *fakeAuthServer) {
	t.Helper()
	fake := &fakeAuthServer{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := authclient.New(server.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, fake
}

func TestClient_SignInThenSignOut(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := waitCtx(t)

	view, err := client.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, view)

	result, err := client.SignInEmail(ctx, authclient.SignInRequest{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	state, err := client.Session().Wait(ctx)
	require.NoError(t, err)
	require.True(t, state.Authenticated())
	assert.Equal(t, "a@b.com", state.Session.User.Email)

	require.NoError(t, client.SignOut(ctx))

	state = client.Session().State()
	assert.Equal(t, authclient.StatusReady, state.Status)
	assert.Nil(t, state.Session)

	view, err = client.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestClient_SignInDetachesHeldLookup(t *testing.T) {
	fake := &fakeAuthServer{}
	inner := fake.handler()

	held := make(chan struct{})
	release := make(chan struct{})
	var holdFirst sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == authclient.PathGetSession {
			holdFirst.Do(func() {
				close(held)
				<-release
			})
		}
		inner.ServeHTTP(writer, request)
	}))
	t.Cleanup(server.Close)
	unblock := sync.OnceFunc(func() { close(release) })
	t.Cleanup(unblock)

	client, err := authclient.New(server.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	ctx := waitCtx(t)
	stale := make(chan *authclient.SessionView, 1)
	go func() {
		view, err := client.GetSession(ctx)
		assert.NoError(t, err)
		stale <- view
	}()
	<-held

	result, err := client.SignInEmail(ctx, authclient.SignInRequest{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)
	require.True(t, result.Success)

	state, err := client.Session().Wait(ctx)
	require.NoError(t, err)
	require.True(t, state.Authenticated())

	unblock()
	assert.Nil(t, <-stale)
	assert.True(t, client.Session().State().Authenticated())
	assert.Equal(t, int32(2), fake.getSessionCalls.Load())
}

func TestClient_SignInRejected(t *testing.T) {
	client, fake := newTestClient(t)

	result, err := client.SignInEmail(waitCtx(t), authclient.SignInRequest{Email: "a@b.com", Password: "wrongpass"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid email or password", result.Message)
	assert.Equal(t, int32(0), fake.getSessionCalls.Load())
}

func TestClient_SignUpValidationFailure(t *testing.T) {
	client, _ := newTestClient(t)

	result, err := client.SignUpEmail(waitCtx(t), authclient.SignUpRequest{Email: "a@b.com", Password: "1234567", Name: "A B"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "password", result.Field)
	assert.Equal(t, "Password must be at least 8 characters long", result.Message)
}

func TestClient_TransportFault(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := authclient.New(server.URL)
	require.NoError(t, err)
	defer client.Close()
	server.Close()

	_, err = client.SignInEmail(waitCtx(t), authclient.SignInRequest{Email: "a@b.com", Password: "longenough"})
	assert.Error(t, err)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := authclient.New("::not a url")
	assert.Error(t, err)
}

func TestDecodeResponse_APIError(t *testing.T) {
	recorder := httptest.NewRecorder()
	recorder.WriteHeader(http.StatusServiceUnavailable)

	err := authclient.DecodeResponse(recorder.Result(), nil)
	apiErr, ok := authclient.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Service Unavailable", apiErr.Message)
}
