// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Endpoints of the /api/auth namespace.
const (
	PathSignUpEmail = "/api/auth/sign-up/email"
	PathSignInEmail = "/api/auth/sign-in/email"
	PathSignOut     = "/api/auth/sign-out"
	PathGetSession  = "/api/auth/get-session"
)

// maxResponseBytes bounds decoded response bodies.
const maxResponseBytes = 1 << 20

// # Payloads

// SignUpRequest is the body of POST /api/auth/sign-up/email.
//
// Name wins over FirstName/LastName when both are present.
type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SignInRequest is the body of POST /api/auth/sign-in/email.
type SignInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// Session mirrors the server session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User mirrors the server user projection.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SessionView is the payload of GET /api/auth/get-session.
type SessionView struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// Result is the outcome of an auth action.
type Result struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Field    string       `json:"field,omitempty"`
	Redirect string       `json:"redirect,omitempty"`
	User     *User        `json:"user,omitempty"`
	Session  *SessionView `json:"session,omitempty"`
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// # Errors

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	Details    []FieldError `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// AsAPIError extracts an [*APIError] from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeResponse reads a response in the server's JSON envelope.
//
// On 2xx the "data" member is decoded into target (target may be nil). A
// "data": null leaves target untouched. Any other status is returned as an
// [*APIError].
func DecodeResponse(response *http.Response, target any) error {
	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("authclient: read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{StatusCode: response.StatusCode}
		if len(body) > 0 {
			_ = json.Unmarshal(body, apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(response.StatusCode)
		}
		return apiErr
	}

	if target == nil || len(body) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("authclient: decode envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("authclient: decode data: %w", err)
	}
	return nil
}
