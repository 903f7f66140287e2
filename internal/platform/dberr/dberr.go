// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// identity-level errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/notesput/internal/identity"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: not found")

// Wrap classifies a database error.
//
//   - pgx.ErrNoRows becomes [ErrNotFound].
//   - A unique violation becomes [identity.ErrEmailTaken], the only unique key users carry.
//   - A check or not-null violation becomes [identity.ErrRejected].
//   - Anything else is wrapped in [identity.ErrUnavailable].
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return identity.ErrEmailTaken
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%w: %s", identity.ErrRejected, action)
		}
	}

	return fmt.Errorf("%w: %s: %w", identity.ErrUnavailable, action, err)
}
