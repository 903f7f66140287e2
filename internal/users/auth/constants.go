// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Input Constraints

const (
	// MinPasswordLength is checked before any provider call.
	MinPasswordLength = 8

	// MaxPasswordLength bounds bcrypt input.
	MaxPasswordLength = 128

	// MaxNameLength bounds the composed display name.
	MaxNameLength = 200

	// DefaultProviderTimeout applies when the service is built without one.
	DefaultProviderTimeout = 5 * time.Second
)

// # Result Messages

// Messages returned to the caller. Credential failures share one message so a
// caller cannot tell an unknown email from a wrong password.
const (
	MsgAccountCreated     = "account created"
	MsgSignedIn           = "signed in"
	MsgSignedOut          = "signed out"
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailTaken         = "Email already registered"
	MsgSignUpFailed       = "Could not create the account. Please try again."
	MsgSignOutFailed      = "Could not sign out. Please try again."
	MsgUnavailable        = "Authentication is temporarily unavailable. Please try again."
)

// Action names used in logs and metrics.
const (
	ActionSignUp  = "sign_up"
	ActionSignIn  = "sign_in"
	ActionSignOut = "sign_out"
)
