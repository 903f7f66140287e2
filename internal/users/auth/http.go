// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/notesput/internal/platform/apperr"
	requestutil "github.com/taibuivan/notesput/internal/platform/request"
	"github.com/taibuivan/notesput/internal/platform/respond"
	"github.com/taibuivan/notesput/internal/platform/validate"
)

// # Definitions & Constructors

// Handler serves the /api/auth namespace.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the /api/auth endpoints.
//
// # Endpoints
//   - POST /sign-up/email : Creates an account.
//   - POST /sign-in/email : Issues a session cookie.
//   - POST /sign-out      : Revokes the session and clears its cookies.
//   - GET  /get-session   : Returns {session, user} or null.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/sign-up/email", handler.signUp)
	router.Post("/sign-in/email", handler.signIn)
	router.Post("/sign-out", handler.signOut)
	router.Get("/get-session", handler.getSession)

	return router
}

// # Request Payloads

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type signInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

/*
POST /api/auth/sign-up/email.

Description: Composes the display name from firstName and lastName when name
is absent, then runs the sign-up action.

Response:
  - 200: Result: {success: true, message: "account created", user}
  - 400: Validation failure with the offending field
  - 409: Email already registered
  - 422: Provider refused the account
  - 503: Provider unavailable
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	name := input.Name
	if strings.TrimSpace(name) == "" {
		name = validate.DisplayName(input.FirstName, input.LastName)
	}

	result := handler.authService.SignUp(request.Context(), SignUpInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     name,
	})

	render(writer, request, result)
}

/*
POST /api/auth/sign-in/email.

Response:
  - 200: Result with redirect, session and Set-Cookie headers
  - 400: Validation failure
  - 401: Invalid email or password
  - 503: Provider unavailable
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	var input signInRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result := handler.authService.SignIn(request.Context(), SignInInput{
		Email:       input.Email,
		Password:    input.Password,
		CallbackURL: input.CallbackURL,
		UserAgent:   request.UserAgent(),
		IPAddress:   requestutil.ClientIP(request),
	})

	render(writer, request, result)
}

// POST /api/auth/sign-out.
func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	render(writer, request, handler.authService.SignOut(request.Context(), request.Header))
}

/*
GET /api/auth/get-session.

Response:
  - 200: {session, user} or null when signed out
  - 503: Provider unavailable
*/
func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Cache-Control", "no-store")

	view, err := handler.authService.Session(request.Context(), request.Header)
	if err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable(MsgUnavailable).WithCause(err))
		return
	}

	if view == nil {
		respond.OK(writer, nil)
		return
	}
	respond.OK(writer, view)
}

// # Rendering

// render writes a [Result]: cookies and 200 on success, an error envelope
// with a status derived from the failure reason otherwise.
func render(writer http.ResponseWriter, request *http.Request, result Result) {
	for _, cookie := range result.Cookies() {
		http.SetCookie(writer, cookie)
	}

	if result.Success {
		respond.OK(writer, result)
		return
	}

	respond.Error(writer, request, resultError(result))
}

func resultError(result Result) *apperr.AppError {
	switch result.Reason() {
	case ReasonInvalidInput:
		return apperr.ValidationError(result.Message, apperr.FieldError{Field: result.Field, Message: result.Message})
	case ReasonInvalidCredentials:
		return apperr.Unauthorized(result.Message)
	case ReasonEmailTaken:
		return apperr.Conflict(result.Message)
	case ReasonRejected:
		return apperr.Unprocessable(result.Message)
	default:
		return apperr.ServiceUnavailable(result.Message)
	}
}
