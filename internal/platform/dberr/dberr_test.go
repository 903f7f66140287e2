// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no_rows", pgx.ErrNoRows, dberr.ErrNotFound},
		{"wrapped_no_rows", fmt.Errorf("query: %w", pgx.ErrNoRows), dberr.ErrNotFound},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, identity.ErrEmailTaken},
		{"check_violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, identity.ErrRejected},
		{"connection_lost", errors.New("conn closed"), identity.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, dberr.Wrap(tt.err, "insert user"), tt.target)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "noop"))
}
