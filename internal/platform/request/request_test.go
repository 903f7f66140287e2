// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/apperr"
	"github.com/taibuivan/notesput/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/notesput/internal/platform/request"
	"github.com/taibuivan/notesput/internal/platform/validate"
)

/*
TestDecodeJSON maps malformed bodies to ErrInvalidJSON.
*/
func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}`))
	require.NoError(t, requestutil.DecodeJSON(request, &target))
	assert.Equal(t, "a@b.com", target.Email)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	assert.Equal(t, validate.ErrInvalidJSON, requestutil.DecodeJSON(request, &target))
}

/*
TestRequiredSession rejects requests that bypassed the gate.
*/
func TestRequiredSession(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	_, err := requestutil.RequiredSession(request)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)

	view := &identity.SessionView{User: identity.User{ID: "u1"}}
	request = request.WithContext(ctxutil.WithSession(request.Context(), view))

	got, err := requestutil.RequiredSession(request)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.User.ID)
}

/*
TestClientIP prefers proxy headers over the socket address.
*/
func TestClientIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.9:51234"
	assert.Equal(t, "10.0.0.9", requestutil.ClientIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", requestutil.ClientIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", requestutil.ClientIP(request))
}
