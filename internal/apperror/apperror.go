// Package apperror defines the error kinds surfaced by the authorization core
// and their translation to HTTP status codes at the web boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	// Internal is any unclassified failure.
	Internal Kind = iota
	// Authentication is a missing, invalid or expired credential or an inactive identity.
	Authentication
	// Authorization is a valid identity lacking a permission.
	Authorization
	// Conflict is a uniqueness, integrity or structural violation.
	Conflict
	// NotFound is a referenced id that does not exist.
	NotFound
	// Validation is a missing or malformed input field.
	Validation
	// Unavailable is a storage timeout or outage. Callers may retry.
	Unavailable
)

var kindNames = map[Kind]string{ //nolint:gochecknoglobals
	Internal:       "internal",
	Authentication: "authentication",
	Authorization:  "authorization",
	Conflict:       "conflict",
	NotFound:       "not_found",
	Validation:     "validation",
	Unavailable:    "unavailable",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	// Permission is the missing permission code of an Authorization error.
	Permission string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of kind k.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of kind k carrying err.
func Wrap(k Kind, err error, msg string) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// Unauthenticated returns an Authentication error.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: Authentication, Message: msg}
}

// Forbidden returns an Authorization error for the missing permission code.
func Forbidden(permission string) *Error {
	return &Error{
		Kind:       Authorization,
		Message:    "Permission denied: " + permission,
		Permission: permission,
	}
}

// NotFoundf returns a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

// Conflictf returns a Conflict error.
func Conflictf(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

// Invalidf returns a Validation error.
func Invalidf(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

// KindOf returns the kind of the first Error in err's chain or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Internal
}

// Is reports whether err carries an Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// PermissionOf returns the missing permission code of an Authorization error.
func PermissionOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Permission
	}

	return ""
}

// MessageOf returns the user facing message. Internal errors are masked.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return http.StatusText(http.StatusInternalServerError)
	}

	return e.Message
}
