package stamp

import (
	"errors"
	"fmt"
)

// Kind categorizes an error raised while fetching or composing a stamp
type Kind string

const (
	// KindRemote indicates a non-success HTTP response from a service
	KindRemote Kind = "remote"
	// KindNetwork indicates a network-level error (connection refused, DNS, etc.)
	KindNetwork Kind = "network"
	// KindAuth indicates missing or rejected credentials
	KindAuth Kind = "auth"
	// KindDecode indicates a response was received but could not be decoded
	// (bad JPEG, truncated FITS, malformed VOTable)
	KindDecode Kind = "decode"
	// KindShapeMismatch indicates composition inputs with different pixel dimensions
	KindShapeMismatch Kind = "shape_mismatch"
	// KindInvalidStack indicates an exposure stack with too few bands to compose
	KindInvalidStack Kind = "invalid_stack"
)

// Error is the structured error shared by all service clients
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewRemoteError wraps a non-success HTTP response. The remote status and
// message are preserved unchanged and the request is never retried.
func NewRemoteError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindRemote,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *Error {
	return &Error{
		Kind:    KindAuth,
		Message: message,
	}
}

// NewDecodeError creates a decode error
func NewDecodeError(message string, cause error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: message,
		Cause:   cause,
	}
}

// NewShapeMismatchError reports composition planes with different dimensions
func NewShapeMismatchError(w1, h1, w2, h2 int) *Error {
	return &Error{
		Kind:    KindShapeMismatch,
		Message: fmt.Sprintf("plane dimensions differ: %dx%d vs %dx%d", w1, h1, w2, h2),
	}
}

// NewInvalidStackError reports an exposure stack with fewer than three bands
func NewInvalidStackError(got int) *Error {
	return &Error{
		Kind:    KindInvalidStack,
		Message: fmt.Sprintf("composition needs 3 bands, stack has %d", got),
	}
}

// KindOf returns the Kind of err, or the empty Kind when err is not a
// stamp error
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
