// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/apperr"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/ctxutil"
	"github.com/taibuivan/notesput/internal/platform/validate"
)

// maxBodyBytes bounds credential payloads.
const maxBodyBytes = 64 << 10

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns validate.ErrInvalidJSON if decoding fails, otherwise nil.
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Session returns the session validated by the route gate, or nil on public routes.
*/
func Session(request *http.Request) *identity.SessionView {
	return ctxutil.GetSession(request.Context())
}

/*
RequiredSession ensures the request went through the route gate with a live session.

Returns apperr.Unauthorized if it did not.
*/
func RequiredSession(request *http.Request) (*identity.SessionView, error) {
	view := ctxutil.GetSession(request.Context())
	if view == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return view, nil
}

// ClientIP extracts the client IP, respecting common proxy headers.
func ClientIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
