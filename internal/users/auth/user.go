// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/notesput/internal/identity"
)

// # Field Identifiers

// Field names shared by validation messages and request payloads.
const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldName      = "name"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
)

// # Action Results

// Reason classifies an unsuccessful [Result] for the transport layer.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidInput
	ReasonInvalidCredentials
	ReasonEmailTaken
	ReasonRejected
	ReasonUnavailable
)

// Result is the sole outcome of every action. Actions never return an error
// and never panic across this boundary.
type Result struct {
	Success  bool                  `json:"success"`
	Message  string                `json:"message"`
	Field    string                `json:"field,omitempty"`
	Redirect string                `json:"redirect,omitempty"`
	User     *identity.User        `json:"user,omitempty"`
	Session  *identity.SessionView `json:"session,omitempty"`

	reason  Reason
	cookies []*http.Cookie
}

// Reason returns why the action failed, or ReasonNone on success.
func (r Result) Reason() Reason { return r.reason }

// Cookies returns the cookies the provider asked to set on the client.
func (r Result) Cookies() []*http.Cookie { return r.cookies }

func failure(reason Reason, message string) Result {
	return Result{Success: false, Message: message, reason: reason}
}

func invalidField(field, message string) Result {
	return Result{Success: false, Message: message, Field: field, reason: ReasonInvalidInput}
}
