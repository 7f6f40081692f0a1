// Package domainerrors provides coded errors for the access-control domain.
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these at the service boundary; transport maps codes onto HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and assertions.
type Code string

const (
	// CodeValidation marks missing or malformed identity/ban fields
	// (empty names on first-time ban, unparsable ban duration).
	CodeValidation Code = "validation"
	// CodeCriticalData marks an OCR result with no usable national ID.
	// Operations short-circuit on it before any persistence call.
	CodeCriticalData Code = "critical_data"
	// CodeInvalidInput marks malformed identifiers at trust boundaries.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks a request that could not be decoded or understood.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks a missing or unusable actor identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks a role-restricted action by an unauthorized actor.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks an operation that required an absent client.
	CodeNotFound Code = "not_found"
	// CodeConflict marks duplicate national-ID records within an establishment.
	CodeConflict Code = "conflict"
	// CodeInternal marks a failed persistence write or other internal fault.
	CodeInternal Code = "internal"
	// CodeExternal marks a failed or timed-out call to the OCR service.
	CodeExternal Code = "external"
	// CodeTimeout marks an operation aborted by deadline or cancellation.
	CodeTimeout Code = "timeout"
	// CodeInvariantViolation marks a domain invariant broken by stored state.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded domain error. Message is safe to show to staff; wrapped
// causes are for logs only.
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

// New creates a coded error with a user-presentable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from an error, defaulting to CodeInternal for
// uncoded errors so unexpected faults never leak details to callers.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the presentable message from an error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
