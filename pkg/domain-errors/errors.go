// Package dErrors provides coded domain errors shared across modules.
//
// Services return these so transport layers can translate failure kinds into
// response categories without string matching. Stores return
// pkg/platform/sentinel errors instead; services translate at the boundary.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Every failure kind maps to a distinct code so
// callers can distinguish blocking-validation from transient-retry from
// permanent failures.
type Code string

const (
	// CodeInvalidInput marks malformed input, recoverable by correcting the request.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks structurally broken requests (undecodable body, bad params).
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a lookup miss, terminal for that id.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a lost optimistic-concurrency race; safe to retry after
	// re-reading current state.
	CodeConflict Code = "conflict"
	// CodeInvalidTransition marks a status change with no legal edge from the
	// current status. Never retried automatically.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeNoOpTransition marks a transition to the record's current status,
	// distinguished from CodeInvalidTransition so callers can detect duplicate
	// submissions.
	CodeNoOpTransition Code = "noop_transition"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated actor without rights to the resource.
	CodeForbidden Code = "forbidden"
	// CodeUnavailable marks a dependency outage; retryable.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected failures; details are never exposed to clients.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	ErrCode Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrCode, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the error's code.
func (e *Error) Code() Code { return e.ErrCode }

// New creates a coded error with a message.
func New(code Code, message string) error {
	return &Error{ErrCode: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{ErrCode: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{ErrCode: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.ErrCode == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.ErrCode
	}
	return CodeInternal
}

// MessageOf extracts the message from err, empty for uncoded errors.
func MessageOf(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition, CodeNoOpTransition:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
