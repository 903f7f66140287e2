// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"strings"
	"time"

	"github.com/taibuivan/notesput/internal/identity"
)

// # Service Layer

// Service builds account projections from a validated session.
type Service struct {
	now func() time.Time
}

// NewService constructs a new [Service].
func NewService() *Service {
	return &Service{now: time.Now}
}

// WithClock returns a copy of the service that reads time from now.
func (service *Service) WithClock(now func() time.Time) *Service {
	return &Service{now: now}
}

// # Projections

// Profile projects the session's user.
func (service *Service) Profile(view *identity.SessionView) Profile {
	user := view.User
	return Profile{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		MemberSince:   user.CreatedAt,
	}
}

// Session projects the session itself. ExpiresIn never goes below zero.
func (service *Service) Session(view *identity.SessionView) SessionInfo {
	remaining := view.Session.ExpiresAt.Sub(service.now())
	if remaining < 0 {
		remaining = 0
	}

	return SessionInfo{
		ID:        view.Session.ID,
		CreatedAt: view.Session.CreatedAt,
		ExpiresAt: view.Session.ExpiresAt,
		ExpiresIn: int64(remaining / time.Second),
	}
}

/*
Dashboard assembles the post sign-in summary.

Description: The greeting uses the first word of the display name and falls
back to the email's local part.
*/
func (service *Service) Dashboard(view *identity.SessionView) Dashboard {
	return Dashboard{
		Greeting: "Welcome back, " + greetingName(view.User) + "!",
		Profile:  service.Profile(view),
		Session:  service.Session(view),
	}
}

func greetingName(user identity.User) string {
	if fields := strings.Fields(user.Name); len(fields) > 0 {
		return fields[0]
	}
	if local, _, found := strings.Cut(user.Email, "@"); found && local != "" {
		return local
	}
	return "there"
}
