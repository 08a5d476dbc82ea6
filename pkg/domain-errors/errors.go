// Package derrors defines coded domain errors shared across the gateway.
//
// Services return coded errors; the HTTP layer maps codes to status codes and
// JSON envelopes in one place (pkg/platform/httputil). Import alias is dErrors
// by convention.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and caller retry decisions.
type Code string

const (
	// CodeInvalidInput: the identifier (or request body) is malformed. Caller's
	// fault, not retryable.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest: the request itself could not be parsed.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound: the requested record does not exist upstream.
	CodeNotFound Code = "not_found"
	// CodeRateLimited: the caller exceeded its quota and should back off.
	CodeRateLimited Code = "rate_limited"
	// CodeTimeout: the upstream call exceeded its budget. Retryable later.
	CodeTimeout Code = "upstream_timeout"
	// CodeUpstream: the upstream registry failed or returned garbage. Retryable later.
	CodeUpstream Code = "upstream_error"
	// CodeInternal: unexpected failure inside the gateway.
	CodeInternal Code = "internal_error"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
