// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package local

import (
	"context"
	"time"

	"github.com/taibuivan/notesput/internal/identity"
)

// # Records

// Account is the persisted user row, including the password hash that never
// leaves this package.
type Account struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// user returns the read-only projection of the account.
func (a *Account) user() identity.User {
	return identity.User{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
}

// SessionRecord is what the session store keeps under the token hash.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

func (r *SessionRecord) session() identity.Session {
	return identity.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

// # Data Access

// UserStore persists accounts.
type UserStore interface {

	/*
		Create inserts a new account.

		Returns:
		  - error: identity.ErrEmailTaken on a duplicate email
	*/
	Create(ctx context.Context, acct *Account) error

	/*
		FindByEmail returns the account with the given email, compared case-insensitively.

		Returns:
		  - error: dberr.ErrNotFound if absent
	*/
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByID returns the account with the given ID.
	FindByID(ctx context.Context, id string) (*Account, error)
}

// SessionStore persists sessions keyed by the hash of their bearer token.
type SessionStore interface {
	// Create stores the record until its expiry.
	Create(ctx context.Context, tokenHash string, record *SessionRecord) error

	// Find returns the record, or dberr.ErrNotFound when absent or expired.
	Find(ctx context.Context, tokenHash string) (*SessionRecord, error)

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, tokenHash string) error
}
