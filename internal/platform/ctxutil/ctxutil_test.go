// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "test-request-id")
	assert.Equal(t, "test-request-id", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Session verifies the gate-validated session round trip.
*/
func TestContext_Session(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, ctxutil.GetSession(ctx))

	view := &identity.SessionView{
		Session: identity.Session{ID: "sess-1", UserID: "user-123"},
		User:    identity.User{ID: "user-123", Email: "a@b.com"},
	}
	ctx = ctxutil.WithSession(ctx, view)

	retrieved := ctxutil.GetSession(ctx)
	require.NotNil(t, retrieved)
	assert.Equal(t, "user-123", retrieved.User.ID)
	assert.Equal(t, "sess-1", retrieved.Session.ID)
}
