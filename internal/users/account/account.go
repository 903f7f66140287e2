// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account serves the signed-in user's own data: the dashboard summary
and the profile page.

Every endpoint sits behind the session gate. Handlers read the validated
session from the request context and never call the identity provider again.
*/
package account

import (
	"time"
)

// # Projections

// Profile is the user-facing view of an account.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	MemberSince   time.Time `json:"memberSince"`
}

// SessionInfo describes the session the request was made with. The token
// never appears here.
type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int64     `json:"expiresInSeconds"`
}

// Dashboard is the landing payload after sign-in.
type Dashboard struct {
	Greeting string      `json:"greeting"`
	Profile  Profile     `json:"profile"`
	Session  SessionInfo `json:"session"`
}
