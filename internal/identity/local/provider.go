// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package local implements [identity.Provider] on PostgreSQL and Redis.

Accounts live in users.account with bcrypt password hashes. Sessions are opaque
random tokens; only their SHA-256 hash is stored, in Redis, with a TTL equal to
the session lifetime.

# Cookies

Sign-in sets two HttpOnly cookies:

  - <name>: the session token.
  - <name>.data: a short-lived signed copy of the session and user. While it is
    valid and bound to the token cookie, GetSession answers without Redis or
    PostgreSQL. A session revoked on another device stays visible through this
    cookie until it expires.
*/
package local

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/dberr"
	"github.com/taibuivan/notesput/internal/platform/sec"
	"github.com/taibuivan/notesput/pkg/uuid"
)

// Password policy enforced by the provider itself.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	sessionTokenBytes = 32
)

// Options configures a [Provider].
type Options struct {
	CookieName   string
	SessionTTL   time.Duration
	CacheTTL     time.Duration
	SecureCookie bool
}

// Provider is the local [identity.Provider].
type Provider struct {
	users    UserStore
	sessions SessionStore
	tokens   *sec.TokenService
	options  Options
	now      func() time.Time
}

var _ identity.Provider = (*Provider)(nil)

// NewProvider wires the stores and the cookie signer into a Provider.
func NewProvider(users UserStore, sessions SessionStore, tokens *sec.TokenService, options Options) *Provider {
	return &Provider{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		options:  options,
		now:      time.Now,
	}
}

func (p *Provider) dataCookieName() string {
	return p.options.CookieName + constants.SessionDataCookieSuffix
}

// # Sign Up

// SignUpEmail creates an account. It does not create a session.
func (p *Provider) SignUpEmail(ctx context.Context, input identity.SignUpInput) (*identity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", identity.ErrRejected)
	}
	if len(input.Password) < MinPasswordLength || len(input.Password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password length out of range", identity.ErrRejected)
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identity.ErrUnavailable, err)
	}

	acct := &Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    p.now(),
	}

	if err := p.users.Create(ctx, acct); err != nil {
		return nil, err
	}

	user := acct.user()
	return &user, nil
}

// # Sign In

// SignInEmail verifies credentials and issues a new session.
//
// Unknown emails and wrong passwords both return [identity.ErrInvalidCredentials]
// after the same bcrypt work.
func (p *Provider) SignInEmail(ctx context.Context, input identity.SignInInput) (*identity.SignInResult, error) {
	acct, err := p.users.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			sec.BurnPasswordCheck(input.Password)
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, acct.PasswordHash) {
		return nil, identity.ErrInvalidCredentials
	}

	token, err := sec.GenerateSecureToken(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identity.ErrUnavailable, err)
	}

	now := p.now()
	record := &SessionRecord{
		ID:        uuid.New(),
		UserID:    acct.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(p.options.SessionTTL),
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	}

	tokenHash := sec.HashToken(token)
	if err := p.sessions.Create(ctx, tokenHash, record); err != nil {
		return nil, err
	}

	view := identity.SessionView{Session: record.session(), User: acct.user()}

	cookies := []*http.Cookie{p.cookie(p.options.CookieName, token, record.ExpiresAt)}
	if dataCookie := p.signDataCookie(view, tokenHash); dataCookie != nil {
		cookies = append(cookies, dataCookie)
	}

	return &identity.SignInResult{View: view, Cookies: cookies}, nil
}

// # Session Lookup

// GetSession resolves the session cookie carried by header.
func (p *Provider) GetSession(ctx context.Context, header http.Header) (*identity.SessionView, error) {
	token := readCookie(header, p.options.CookieName)
	if token == "" {
		return nil, nil
	}

	tokenHash := sec.HashToken(token)
	now := p.now()

	if view := p.verifyDataCookie(header, tokenHash); view != nil && view.ValidAt(now) {
		return view, nil
	}

	record, err := p.sessions.Find(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	session := record.session()
	if !session.ValidAt(now) {
		return nil, nil
	}

	acct, err := p.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &identity.SessionView{Session: session, User: acct.user()}, nil
}

// # Sign Out

// SignOut revokes the session and returns cookies that clear it on the client.
// The clearing cookies are returned even when revocation fails.
func (p *Provider) SignOut(ctx context.Context, header http.Header) ([]*http.Cookie, error) {
	cleared := []*http.Cookie{
		p.expiredCookie(p.options.CookieName),
		p.expiredCookie(p.dataCookieName()),
	}

	if token := readCookie(header, p.options.CookieName); token != "" {
		if err := p.sessions.Delete(ctx, sec.HashToken(token)); err != nil {
			return cleared, err
		}
	}

	return cleared, nil
}

// # Cookie Helpers

func (p *Provider) cookie(name, value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   max(int(expiresAt.Sub(p.now()).Seconds()), 1),
		HttpOnly: true,
		Secure:   p.options.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p *Provider) expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.options.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p *Provider) signDataCookie(view identity.SessionView, tokenHash string) *http.Cookie {
	if p.options.CacheTTL <= 0 || p.tokens == nil {
		return nil
	}

	signed, expiresAt, err := p.tokens.Sign(sec.SessionClaims{
		SessionID:        view.Session.ID,
		TokenHash:        tokenHash,
		SessionCreatedAt: view.Session.CreatedAt,
		SessionExpiresAt: view.Session.ExpiresAt,
		UserID:           view.User.ID,
		Name:             view.User.Name,
		Email:            view.User.Email,
		EmailVerified:    view.User.EmailVerified,
		UserCreatedAt:    view.User.CreatedAt,
	}, p.options.CacheTTL)
	if err != nil {
		return nil
	}

	return p.cookie(p.dataCookieName(), signed, expiresAt)
}

// verifyDataCookie returns the cached view if the data cookie is valid and
// was issued for tokenHash.
func (p *Provider) verifyDataCookie(header http.Header, tokenHash string) *identity.SessionView {
	if p.options.CacheTTL <= 0 || p.tokens == nil {
		return nil
	}

	raw := readCookie(header, p.dataCookieName())
	if raw == "" {
		return nil
	}

	claims, err := p.tokens.Verify(raw)
	if err != nil || claims.TokenHash != tokenHash {
		return nil
	}

	return &identity.SessionView{
		Session: identity.Session{
			ID:        claims.SessionID,
			UserID:    claims.UserID,
			CreatedAt: claims.SessionCreatedAt,
			ExpiresAt: claims.SessionExpiresAt,
		},
		User: identity.User{
			ID:            claims.UserID,
			Name:          claims.Name,
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
			CreatedAt:     claims.UserCreatedAt,
		},
	}
}

func readCookie(header http.Header, name string) string {
	cookie, err := (&http.Request{Header: header}).Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
