// Package domainerrors provides coded errors for the application core.
//
// Services return these so transport layers can translate them into HTTP
// statuses without inspecting error strings. Stores return the sentinels in
// pkg/platform/sentinel instead; services wrap those into coded errors at the
// boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks a blocked transition or rejected field value. The
	// attempted mutation did not occur; the caller may correct input and retry.
	CodeValidation Code = "validation"
	// CodeNotFound marks an operation on an unknown id.
	CodeNotFound Code = "not_found"
	// CodeBadRequest marks a malformed request at the transport boundary.
	CodeBadRequest Code = "bad_request"
	// CodeConflict marks a uniqueness or concurrent-update conflict.
	CodeConflict Code = "conflict"
	// CodeUnauthorized marks a missing or failed credential check.
	CodeUnauthorized Code = "unauthorized"

	// Collaborator failure codes. All three are retryable and never leave the
	// invoking wizard in a partially committed state.
	CodeRateLimited       Code = "rate_limited"
	CodeUnavailable       Code = "unavailable"
	CodeMalformedResponse Code = "malformed_response"

	// CodeDecode marks an unreadable persisted blob. Load paths absorb this
	// into the key's default value; it never prevents startup.
	CodeDecode Code = "decode"

	// CodeInvariantViolation marks an illegal state transition on a model.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks everything the caller cannot act on.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If err is nil,
// Wrap returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is shorthand for HasCode, matching the assertion style used in tests.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Retryable reports whether the error represents a transient collaborator
// failure the user can retry without losing entered data.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeRateLimited, CodeUnavailable, CodeMalformedResponse:
		return true
	}
	return false
}
