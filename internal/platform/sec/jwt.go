// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives: password hashing, opaque
// session tokens, and the signed session cookie cache.
//
// # Cookie cache
//
// After sign-in the client holds two cookies: the opaque session token and a
// short-lived HS256 JWT copy of the session ([SessionClaims]). While the JWT is
// valid, session lookups skip Redis. The JWT is bound to the token through
// TokenHash, so it is useless without the token cookie it was issued with.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSecretTooShort is returned when the HMAC secret is under 32 bytes.
var ErrSecretTooShort = errors.New("sec: session secret must be at least 32 bytes")

// SessionClaims is the payload of the signed session cookie cache.
//
// Claim names are abbreviated to keep the cookie small.
type SessionClaims struct {
	jwt.RegisteredClaims

	SessionID        string    `json:"sid"`
	TokenHash        string    `json:"tkh"`
	SessionCreatedAt time.Time `json:"sca"`
	SessionExpiresAt time.Time `json:"sea"`

	UserID        string    `json:"uid"`
	Name          string    `json:"unm"`
	Email         string    `json:"eml"`
	EmailVerified bool      `json:"evf"`
	UserCreatedAt time.Time `json:"uca"`
}

// TokenService signs and verifies [SessionClaims] using HS256.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService from a shared secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *service
	clone.now = now
	return &clone
}

// Sign issues a JWT for claims that expires after ttl, or at the session's own
// expiry if that comes first.
func (service *TokenService) Sign(claims SessionClaims, timeToLive time.Duration) (string, time.Time, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(timeToLive)
	if !claims.SessionExpiresAt.IsZero() && claims.SessionExpiresAt.Before(expiresAt) {
		expiresAt = claims.SessionExpiresAt
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign session cookie: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature, issuer and expiry of a session cookie JWT.
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid session cookie: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("sec: invalid session cookie claims")
	}

	return claims, nil
}
