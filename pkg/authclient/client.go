// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authclient is a Go client for the Notesput /api/auth namespace.

A [Client] keeps the session cookies in its own cookie jar and owns a
[SessionCache] that reflects the signed-in state:

	client, _ := authclient.New("https://notesput.app")
	unsubscribe := client.Session().Subscribe(func(state authclient.State) {
	    fmt.Println(state.Status, state.Authenticated())
	})
	defer unsubscribe()

	result, err := client.SignInEmail(ctx, authclient.SignInRequest{Email: email, Password: password})

Sign-in and sign-up refresh the cache. Sign-out clears it, so a signed-out
client never reports the previous session.
*/
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// Client calls the /api/auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *SessionCache
	lookups    singleflight.Group
}

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. It should carry a cookie jar for
// sessions to persist across calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a client for the server at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("authclient: invalid base URL: %w", err)
	}

	client := &Client{baseURL: strings.TrimSuffix(baseURL, "/")}
	for _, option := range options {
		option(client)
	}

	if client.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("authclient: cookie jar: %w", err)
		}
		client.httpClient = &http.Client{Jar: jar, Timeout: defaultTimeout}
	}

	client.cache = NewSessionCache(client.GetSession)
	return client, nil
}

// Session returns the client's session cache.
func (c *Client) Session() *SessionCache {
	return c.cache
}

// Close releases the session cache and idle connections.
func (c *Client) Close() {
	c.cache.Close()
	c.httpClient.CloseIdleConnections()
}

// failedResult turns a server-side refusal into an unsuccessful [Result].
// Transport faults stay errors.
func failedResult(err error) (*Result, error) {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return nil, err
	}
	result := &Result{Success: false, Message: apiErr.Message}
	if len(apiErr.Details) > 0 {
		result.Field = apiErr.Details[0].Field
		result.Message = apiErr.Details[0].Message
	}
	return result, nil
}

// SignUpEmail creates an account. A successful result refreshes the cache.
func (c *Client) SignUpEmail(ctx context.Context, input SignUpRequest) (*Result, error) {
	result := &Result{}
	if err := c.call(ctx, http.MethodPost, PathSignUpEmail, input, result); err != nil {
		return failedResult(err)
	}
	if result.Success {
		c.refresh()
	}
	return result, nil
}

// SignInEmail signs in. A successful result refreshes the cache.
func (c *Client) SignInEmail(ctx context.Context, input SignInRequest) (*Result, error) {
	result := &Result{}
	if err := c.call(ctx, http.MethodPost, PathSignInEmail, input, result); err != nil {
		return failedResult(err)
	}
	if result.Success {
		c.refresh()
	}
	return result, nil
}

// SignOut revokes the session. On success the cache is cleared to Ready{nil};
// on failure it is refreshed so it reflects whatever the server still holds.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPost, PathSignOut, nil, nil); err != nil {
		c.refresh()
		return err
	}
	c.lookups.Forget(PathGetSession)
	c.cache.Clear()
	return nil
}

// refresh detaches lookups started before the session changed, so the cache
// fetch that follows asks the server again instead of joining them.
func (c *Client) refresh() {
	c.lookups.Forget(PathGetSession)
	c.cache.Refresh()
}

// GetSession fetches the current session, or nil when signed out. Concurrent
// calls share one request until a sign-in, sign-up or sign-out detaches it.
func (c *Client) GetSession(ctx context.Context) (*SessionView, error) {
	results := c.lookups.DoChan(PathGetSession, func() (any, error) {
		var view *SessionView
		if err := c.call(context.WithoutCancel(ctx), http.MethodGet, PathGetSession, nil, &view); err != nil {
			return nil, err
		}
		return view, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*SessionView), nil
	}
}

func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authclient: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("authclient: build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	return DecodeResponse(response, target)
}
