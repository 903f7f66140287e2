// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package remote implements [identity.Provider] against an external service
// that exposes the /api/auth namespace.
//
// Cookies from the inbound request are forwarded verbatim, and Set-Cookie
// headers from the service are handed back to the caller unchanged, so the
// browser holds the service's own session cookie.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/pkg/authclient"
)

// Provider calls the identity service over HTTP.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

var _ identity.Provider = (*Provider)(nil)

// NewProvider creates a provider for the service at baseURL. The HTTP client
// must not follow redirects or keep a cookie jar; pass nil for a default one.
func NewProvider(baseURL string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Provider{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

// GetSession implements [identity.SessionReader]. A 401 from the service
// means no session.
func (p *Provider) GetSession(ctx context.Context, header http.Header) (*identity.SessionView, error) {
	var view *authclient.SessionView
	_, err := p.call(ctx, http.MethodGet, authclient.PathGetSession, nil, forwardCookies(header), &view)
	if err != nil {
		if apiErr, ok := authclient.AsAPIError(err); ok && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, nil
		}
		return nil, classify(err)
	}
	if view == nil {
		return nil, nil
	}
	converted := toSessionView(*view)
	return &converted, nil
}

// SignUpEmail implements [identity.Provider].
func (p *Provider) SignUpEmail(ctx context.Context, input identity.SignUpInput) (*identity.User, error) {
	result := &authclient.Result{}
	_, err := p.call(ctx, http.MethodPost, authclient.PathSignUpEmail, authclient.SignUpRequest{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	}, nil, result)
	if err != nil {
		return nil, classify(err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", identity.ErrRejected, result.Message)
	}
	if result.User == nil {
		return &identity.User{Email: input.Email, Name: input.Name}, nil
	}
	user := toUser(*result.User)
	return &user, nil
}

// SignInEmail implements [identity.Provider].
func (p *Provider) SignInEmail(ctx context.Context, input identity.SignInInput) (*identity.SignInResult, error) {
	header := http.Header{}
	if input.UserAgent != "" {
		header.Set("User-Agent", input.UserAgent)
	}
	if input.IPAddress != "" {
		header.Set(constants.HeaderXForwardedFor, input.IPAddress)
	}

	result := &authclient.Result{}
	response, err := p.call(ctx, http.MethodPost, authclient.PathSignInEmail, authclient.SignInRequest{
		Email:    input.Email,
		Password: input.Password,
	}, header, result)
	if err != nil {
		return nil, classify(err)
	}
	if !result.Success {
		return nil, identity.ErrInvalidCredentials
	}

	signIn := &identity.SignInResult{Cookies: response.Cookies()}
	if result.Session != nil {
		signIn.View = toSessionView(*result.Session)
	}
	return signIn, nil
}

// SignOut implements [identity.Provider]. When the service call fails, every
// cookie the browser sent is expired anyway so the client ends up signed out.
func (p *Provider) SignOut(ctx context.Context, header http.Header) ([]*http.Cookie, error) {
	response, err := p.call(ctx, http.MethodPost, authclient.PathSignOut, nil, forwardCookies(header), nil)
	if err != nil {
		return expireForwarded(header), classify(err)
	}
	return response.Cookies(), nil
}

// call performs one request and decodes the envelope into target.
func (p *Provider) call(ctx context.Context, method, path string, body any, header http.Header, target any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote: encode %s: %w", path, err)
		}
		payload = encoded
	}

	request, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("remote: build %s: %w", path, err)
	}
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := p.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", identity.ErrUnavailable, method, path, err)
	}
	defer response.Body.Close()

	if err := authclient.DecodeResponse(response, target); err != nil {
		return nil, err
	}
	return response, nil
}

// classify maps service responses onto identity errors.
func classify(err error) error {
	apiErr, ok := authclient.AsAPIError(err)
	if !ok {
		if errors.Is(err, identity.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", identity.ErrUnavailable, err)
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return identity.ErrInvalidCredentials
	case apiErr.StatusCode == http.StatusConflict:
		return identity.ErrEmailTaken
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return fmt.Errorf("%w: %s", identity.ErrRejected, apiErr.Message)
	default:
		return fmt.Errorf("%w: %w", identity.ErrUnavailable, apiErr)
	}
}

func forwardCookies(header http.Header) http.Header {
	forwarded := http.Header{}
	for _, value := range header.Values(constants.HeaderCookie) {
		forwarded.Add(constants.HeaderCookie, value)
	}
	return forwarded
}

func expireForwarded(header http.Header) []*http.Cookie {
	sent := (&http.Request{Header: forwardCookies(header)}).Cookies()
	cleared := make([]*http.Cookie, 0, len(sent))
	seen := make(map[string]struct{}, len(sent))
	for _, cookie := range sent {
		if _, dup := seen[cookie.Name]; dup {
			continue
		}
		seen[cookie.Name] = struct{}{}
		cleared = append(cleared, &http.Cookie{
			Name:     cookie.Name,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return cleared
}

func toUser(user authclient.User) identity.User {
	return identity.User{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}

func toSessionView(view authclient.SessionView) identity.SessionView {
	return identity.SessionView{
		Session: identity.Session{
			ID:        view.Session.ID,
			UserID:    view.Session.UserID,
			CreatedAt: view.Session.CreatedAt,
			ExpiresAt: view.Session.ExpiresAt,
		},
		User: toUser(view.User),
	}
}
