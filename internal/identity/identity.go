// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity defines the contract between Notesput and its identity provider.

The provider owns credentials, users and sessions. Everything else in the
repository reads sessions through [Provider] and never mutates a [User].

# Implementations

  - identity/local: PostgreSQL users, Redis sessions, bcrypt hashes.
  - identity/remote: an external service exposing the same /api/auth namespace.
*/
package identity

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// # Domain Entities

// Session is server-issued proof of authenticated identity with an expiry.
//
// Invariant: ExpiresAt is strictly after CreatedAt.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session is present and unexpired at now.
func (s *Session) ValidAt(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// User is the read-only account projection exposed to the rest of the system.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SessionView pairs a session with the user it belongs to.
type SessionView struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// ValidAt reports whether the view carries a session that is unexpired at now.
func (v *SessionView) ValidAt(now time.Time) bool {
	return v != nil && v.Session.ValidAt(now)
}

// # Provider Inputs & Outputs

// SignUpInput holds the data required to create an account.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// SignInInput holds the credentials of a sign-in attempt plus client metadata.
type SignInInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// SignInResult is returned by a successful sign-in.
//
// Cookies must be written to the client response unchanged; they carry the
// session token and are the only way the session travels back to the provider.
type SignInResult struct {
	View    SessionView
	Cookies []*http.Cookie
}

// # Provider Contract

// SessionReader is the part of [Provider] the route gate depends on.
type SessionReader interface {
	// GetSession resolves the session carried by the request headers (cookies).
	// It returns (nil, nil) when the headers carry no live session.
	GetSession(ctx context.Context, header http.Header) (*SessionView, error)
}

// Provider is the full identity-provider capability.
type Provider interface {
	SessionReader

	// SignUpEmail creates an account. It does not sign the user in.
	SignUpEmail(ctx context.Context, input SignUpInput) (*User, error)

	// SignInEmail verifies credentials and issues a new session.
	SignInEmail(ctx context.Context, input SignInInput) (*SignInResult, error)

	// SignOut revokes the session carried by header and returns the cookies
	// that clear it on the client. Signing out without a session is not an error.
	SignOut(ctx context.Context, header http.Header) ([]*http.Cookie, error)
}

// # Provider Errors

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrEmailTaken is returned by SignUpEmail when the email is registered.
	ErrEmailTaken = errors.New("identity: email already registered")

	// ErrRejected is returned when the provider refuses the input itself
	// (password policy, malformed fields).
	ErrRejected = errors.New("identity: request rejected")

	// ErrUnavailable wraps transport and storage faults.
	ErrUnavailable = errors.New("identity: provider unavailable")
)
