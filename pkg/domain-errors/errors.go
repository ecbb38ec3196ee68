// Package domainerrors defines the error taxonomy shared between domain
// logic and the HTTP layer. Domain code attaches a Code; the transport maps
// it to a status without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// CodeInvalidInput marks request bodies that fail field validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthenticated marks requests without a usable bearer token.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeForbidden marks authenticated callers that are not entitled to
	// the consumer, scope or integrator binding they attempt to use.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks unknown API versions.
	CodeNotFound Code = "not_found"
	// CodeAuditFailed marks an unacknowledged audit write. The disclosure
	// must fail when the audit record cannot be confirmed.
	CodeAuditFailed Code = "audit_failed"
	// CodeInternal covers everything unexpected.
	CodeInternal Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err is untyped.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
