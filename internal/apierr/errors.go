// Package apierr defines the typed error taxonomy shared by all API-facing
// components. Callers branch on Kind to decide presentation: authentication
// errors redirect to sign-in, validation errors surface inline, network
// errors render as a generic retryable notice.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindNetwork        Kind = "network"
)

// Error is a classified API failure. Message is safe to show to the user;
// Status is the HTTP status that produced the error, or 0 for transport
// failures that never got a response.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Authentication reports an absent, invalid, or expired token.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Validation reports missing or malformed input fields.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Conflict reports a state collision, such as a duplicate active request.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound reports that a referenced resource no longer exists.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Network wraps a transport-level failure that never produced a usable
// response.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "request failed", Err: err}
}

// FromStatus maps a non-2xx HTTP status and the server-provided message (may
// be empty) to a classified error. Statuses outside the taxonomy become
// network errors so the UI falls back to its generic retryable notice.
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: KindAuthentication, Message: message, Status: status}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &Error{Kind: KindValidation, Message: message, Status: status}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: message, Status: status}
	case http.StatusConflict:
		return &Error{Kind: KindConflict, Message: message, Status: status}
	default:
		return &Error{Kind: KindNetwork, Message: message, Status: status}
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsAuthentication(err error) bool { return IsKind(err, KindAuthentication) }
func IsValidation(err error) bool     { return IsKind(err, KindValidation) }
func IsConflict(err error) bool       { return IsKind(err, KindConflict) }
func IsNotFound(err error) bool       { return IsKind(err, KindNotFound) }
func IsNetwork(err error) bool        { return IsKind(err, KindNetwork) }
