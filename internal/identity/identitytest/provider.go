// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package identitytest provides an in-memory [identity.Provider] double with
// per-operation call counters.
package identitytest

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/taibuivan/notesput/internal/identity"
)

// Provider is a scriptable [identity.Provider].
//
// Each *Func field overrides the corresponding operation. A nil func yields a
// zero-value success. Set Panic to make every call panic, which simulates a
// provider that throws.
type Provider struct {
	GetSessionFunc  func(ctx context.Context, header http.Header) (*identity.SessionView, error)
	SignUpEmailFunc func(ctx context.Context, input identity.SignUpInput) (*identity.User, error)
	SignInEmailFunc func(ctx context.Context, input identity.SignInInput) (*identity.SignInResult, error)
	SignOutFunc     func(ctx context.Context, header http.Header) ([]*http.Cookie, error)
	Panic           any

	getSessionCalls  atomic.Int64
	signUpEmailCalls atomic.Int64
	signInEmailCalls atomic.Int64
	signOutCalls     atomic.Int64

	mu         sync.Mutex
	lastHeader http.Header
}

var _ identity.Provider = (*Provider)(nil)

// GetSession implements [identity.SessionReader].
func (p *Provider) GetSession(ctx context.Context, header http.Header) (*identity.SessionView, error) {
	p.getSessionCalls.Add(1)
	p.mu.Lock()
	p.lastHeader = header.Clone()
	p.mu.Unlock()
	p.maybePanic()
	if p.GetSessionFunc == nil {
		return nil, nil
	}
	return p.GetSessionFunc(ctx, header)
}

// SignUpEmail implements [identity.Provider].
func (p *Provider) SignUpEmail(ctx context.Context, input identity.SignUpInput) (*identity.User, error) {
	p.signUpEmailCalls.Add(1)
	p.maybePanic()
	if p.SignUpEmailFunc == nil {
		return &identity.User{Email: input.Email, Name: input.Name}, nil
	}
	return p.SignUpEmailFunc(ctx, input)
}

// SignInEmail implements [identity.Provider].
func (p *Provider) SignInEmail(ctx context.Context, input identity.SignInInput) (*identity.SignInResult, error) {
	p.signInEmailCalls.Add(1)
	p.maybePanic()
	if p.SignInEmailFunc == nil {
		return &identity.SignInResult{}, nil
	}
	return p.SignInEmailFunc(ctx, input)
}

// SignOut implements [identity.Provider].
func (p *Provider) SignOut(ctx context.Context, header http.Header) ([]*http.Cookie, error) {
	p.signOutCalls.Add(1)
	p.maybePanic()
	if p.SignOutFunc == nil {
		return nil, nil
	}
	return p.SignOutFunc(ctx, header)
}

// GetSessionCalls returns the number of GetSession invocations.
func (p *Provider) GetSessionCalls() int { return int(p.getSessionCalls.Load()) }

// SignUpEmailCalls returns the number of SignUpEmail invocations.
func (p *Provider) SignUpEmailCalls() int { return int(p.signUpEmailCalls.Load()) }

// SignInEmailCalls returns the number of SignInEmail invocations.
func (p *Provider) SignInEmailCalls() int { return int(p.signInEmailCalls.Load()) }

// SignOutCalls returns the number of SignOut invocations.
func (p *Provider) SignOutCalls() int { return int(p.signOutCalls.Load()) }

// LastHeader returns a copy of the headers passed to the last GetSession call.
func (p *Provider) LastHeader() http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastHeader.Clone()
}

func (p *Provider) maybePanic() {
	if p.Panic != nil {
		panic(p.Panic)
	}
}
