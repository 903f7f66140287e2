// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides the time-ordered identifiers used for accounts and
sessions.

Identifiers are UUID version 7: sortable by creation time and friendly to
PostgreSQL B-tree indexes.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// # Validation

// IsValid reports whether s is a UUID in canonical or braced form.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}
