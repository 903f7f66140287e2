// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the auth action layer and its /api/auth endpoints.

Every action validates its input first, then makes at most one provider call,
and always returns a [Result]. Provider errors, timeouts and panics are logged
here and converted into generic messages.

# Disclosure policy

  - Sign-in: one message for unknown email and wrong password.
  - Sign-up: "Email already registered" is the only provider cause shown.
    Everything else the provider reports becomes a generic failure.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/ctxutil"
	"github.com/taibuivan/notesput/internal/platform/metrics"
	"github.com/taibuivan/notesput/internal/platform/validate"
)

// Service wraps an [identity.Provider] with validation and a normalized result.
type Service struct {
	provider identity.Provider
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// NewService constructs a [Service]. metrics may be nil.
func NewService(provider identity.Provider, m *metrics.Metrics, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Service{provider: provider, metrics: m, timeout: timeout}
}

// # Inputs

// SignUpInput carries a sign-up submission. Name is already composed from
// first and last name by the caller.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// SignInInput carries a sign-in submission.
type SignInInput struct {
	Email       string
	Password    string
	CallbackURL string
	UserAgent   string
	IPAddress   string
}

// # Sign Up

/*
SignUp creates an account.

Description: Validates email, password and name before calling the provider.
A password shorter than MinPasswordLength never reaches the provider.
*/
func (service *Service) SignUp(ctx context.Context, input SignUpInput) (result Result) {
	logger := ctxutil.GetLogger(ctx)
	defer service.guard(ctx, ActionSignUp, MsgSignUpFailed, &result)

	email := validate.NormalizeEmail(input.Email)
	name := validate.DisplayName(input.Name)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		MaxLen(FieldPassword, input.Password, MaxPasswordLength).
		Required(FieldName, name).
		MaxLen(FieldName, name, MaxNameLength)

	if first, failed := validator.First(); failed {
		return invalidField(first.Field, first.Message)
	}

	ctx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	user, err := service.provider.SignUpEmail(ctx, identity.SignUpInput{
		Email:    email,
		Password: input.Password,
		Name:     name,
	})
	if err != nil {
		logger.WarnContext(ctx, "sign_up_rejected", slog.Any("error", err))

		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			return Result{Success: false, Message: MsgEmailTaken, Field: FieldEmail, reason: ReasonEmailTaken}
		case errors.Is(err, identity.ErrRejected):
			return failure(ReasonRejected, MsgSignUpFailed)
		default:
			return failure(ReasonUnavailable, MsgUnavailable)
		}
	}

	logger.InfoContext(ctx, "sign_up_succeeded", slog.String("user_id", user.ID))
	return Result{Success: true, Message: MsgAccountCreated, User: user}
}

// # Sign In

/*
SignIn verifies credentials and issues a session.

Description: On success the result carries the provider's cookies and a
Redirect to the sanitized callback URL.
*/
func (service *Service) SignIn(ctx context.Context, input SignInInput) (result Result) {
	logger := ctxutil.GetLogger(ctx)
	defer service.guard(ctx, ActionSignIn, MsgUnavailable, &result)

	email := validate.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password)

	if first, failed := validator.First(); failed {
		return invalidField(first.Field, first.Message)
	}

	ctx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	signIn, err := service.provider.SignInEmail(ctx, identity.SignInInput{
		Email:     email,
		Password:  input.Password,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	})
	if err != nil {
		logger.WarnContext(ctx, "sign_in_rejected", slog.Any("error", err))

		if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrRejected) {
			return failure(ReasonInvalidCredentials, MsgInvalidCredentials)
		}
		return failure(ReasonUnavailable, MsgUnavailable)
	}

	view := signIn.View
	logger.InfoContext(ctx, "sign_in_succeeded", slog.String("user_id", view.User.ID))

	return Result{
		Success:  true,
		Message:  MsgSignedIn,
		Redirect: SafeCallbackURL(input.CallbackURL),
		User:     &view.User,
		Session:  &view,
		cookies:  signIn.Cookies,
	}
}

// # Sign Out

// SignOut revokes the session carried by header. Signing out without a
// session succeeds. Clearing cookies from the provider are kept on failure.
func (service *Service) SignOut(ctx context.Context, header http.Header) (result Result) {
	logger := ctxutil.GetLogger(ctx)
	defer service.guard(ctx, ActionSignOut, MsgSignOutFailed, &result)

	ctx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	cookies, err := service.provider.SignOut(ctx, header)
	if err != nil {
		logger.WarnContext(ctx, "sign_out_failed", slog.Any("error", err))
		result := failure(ReasonUnavailable, MsgSignOutFailed)
		result.cookies = cookies
		return result
	}

	return Result{Success: true, Message: MsgSignedOut, cookies: cookies}
}

// # Session

// Session returns the live session carried by header, or nil. Expired
// sessions are reported as nil.
func (service *Service) Session(ctx context.Context, header http.Header) (view *identity.SessionView, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			view, err = nil, fmt.Errorf("%w: provider panicked: %v", identity.ErrUnavailable, recovered)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	view, err = service.provider.GetSession(ctx, header)
	if err != nil {
		return nil, err
	}
	if !view.ValidAt(time.Now()) {
		return nil, nil
	}
	return view, nil
}

// # Helpers

// guard converts a panic into a failed result and records the action outcome.
func (service *Service) guard(ctx context.Context, action, message string, result *Result) {
	if recovered := recover(); recovered != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "auth_action_panicked",
			slog.String("action", action),
			slog.Any("panic", recovered),
		)
		*result = failure(ReasonUnavailable, message)
		service.metrics.RecordAuthAction(action, metrics.OutcomePanic)
		return
	}
	service.metrics.RecordAuthAction(action, outcome(*result))
}

func outcome(result Result) string {
	switch result.reason {
	case ReasonNone:
		return metrics.OutcomeSuccess
	case ReasonInvalidInput:
		return metrics.OutcomeInvalid
	case ReasonUnavailable:
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeRejected
	}
}

// SafeCallbackURL returns callback if it is a same-origin absolute path, and
// the default post sign-in path otherwise.
func SafeCallbackURL(callback string) string {
	if callback == "" || !strings.HasPrefix(callback, "/") ||
		strings.HasPrefix(callback, "//") || strings.HasPrefix(callback, "/\\") {
		return constants.DefaultAfterSignInPath
	}

	parsed, err := url.Parse(callback)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return constants.DefaultAfterSignInPath
	}

	return callback
}
