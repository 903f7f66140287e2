// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// Messages name the offending field ("Email is required") so callers can
// highlight the input without a second lookup.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/notesput/internal/platform/apperr"
)

var (
	// mailboxRegex matches the simple local@domain.tld shape, no whitespace.
	mailboxRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// Validator is not safe for concurrent use. Create one per operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, label(field)+" is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("%s must be at most %d characters long", label(field), max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("%s must be at least %d characters long", label(field), min))
	}
	return v
}

// Email fails if the value does not look like local@domain.tld.
// Empty values are left to [Validator.Required].
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !mailboxRegex.MatchString(value) {
		v.add(field, "Please enter a valid email address")
	}
	return v
}

// Err returns a VALIDATION_ERROR [apperr.AppError] if any rule failed, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// First returns the first recorded failure in rule order.
func (v *Validator) First() (apperr.FieldError, bool) {
	if len(v.errs) == 0 {
		return apperr.FieldError{}, false
	}
	return v.errs[0], true
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// label turns "display_name" into "Display name".
func label(field string) string {
	words := strings.ReplaceAll(field, "_", " ")
	if words == "" {
		return "Field"
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// # Normalization

// DisplayName joins name parts with single spaces after NFC normalization,
// so "  Ana ", "Lúcia" becomes "Ana Lúcia".
func DisplayName(parts ...string) string {
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		fields = append(fields, strings.Fields(norm.NFC.String(part))...)
	}
	return strings.Join(fields, " ")
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
