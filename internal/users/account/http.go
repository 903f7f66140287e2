// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/notesput/internal/platform/request"
	"github.com/taibuivan/notesput/internal/platform/respond"
)

// Handler implements the HTTP layer for the signed-in user's pages.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Mount registers the account endpoints on router at their top-level paths.
func (handler *Handler) Mount(router chi.Router) {
	router.Get("/dashboard", handler.getDashboard)
	router.Get("/profile", handler.getProfile)
}

/*
GET /dashboard.

Response:
  - 200: Dashboard: greeting, profile and session
  - 401: Request did not pass the session gate
*/
func (handler *Handler) getDashboard(writer http.ResponseWriter, request *http.Request) {
	view, err := requestutil.RequiredSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Cache-Control", "no-store")
	respond.OK(writer, handler.accountService.Dashboard(view))
}

/*
GET /profile.

Response:
  - 200: {profile, session}
  - 401: Request did not pass the session gate
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	view, err := requestutil.RequiredSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Cache-Control", "no-store")
	respond.OK(writer, map[string]any{
		"profile": handler.accountService.Profile(view),
		"session": handler.accountService.Session(view),
	})
}
