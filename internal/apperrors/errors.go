// Package apperrors defines the application error taxonomy. Handlers map
// error kinds to HTTP statuses; everything else wraps and rethrows.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind distinguishes error classes independently of message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindForbidden
	KindValidation
	KindPersistence
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the kind from an error chain, KindUnknown if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MissingField reports an absent required field.
func MissingField(field string) *Error {
	return &Error{
		Kind:    KindValidation,
		Field:   field,
		Message: fmt.Sprintf("please specify %s", field),
	}
}

// InvalidEnum reports a value outside a field's closed set.
func InvalidEnum(field string, allowed []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
	}
}

// NegativeValue reports a numeric field below zero.
func NegativeValue(field string) *Error {
	return &Error{
		Kind:    KindValidation,
		Field:   field,
		Message: fmt.Sprintf("%s cannot be negative", field),
	}
}

// FutureDate reports a record dated after the current instant.
func FutureDate() *Error {
	return &Error{
		Kind:    KindValidation,
		Field:   "date",
		Message: "date cannot be in the future",
	}
}

// InvalidValue reports a malformed field value that is neither an enum nor a
// range violation, such as an unparseable date.
func InvalidValue(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Unauthorized reports a failed authentication check.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden reports an authenticated caller lacking the required role.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Persistence wraps a storage-layer failure.
func Persistence(op string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: op, cause: cause}
}
