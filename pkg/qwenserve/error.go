package qwenserve

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a model server error.
type Error struct {
	// HTTPStatus is the HTTP status code.
	HTTPStatus int

	// Code is the server's machine readable error code, if any.
	Code string

	// Message is the error message.
	Message string

	// RequestID is the X-Request-Id sent with the failing request.
	RequestID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("qwenserve: %s (status=%d, code=%s, request=%s)", e.Message, e.HTTPStatus, e.Code, e.RequestID)
	}
	return fmt.Sprintf("qwenserve: %s (status=%d, request=%s)", e.Message, e.HTTPStatus, e.RequestID)
}

// IsNotFound returns true if the model or route does not exist.
func (e *Error) IsNotFound() bool {
	return e.HTTPStatus == http.StatusNotFound
}

// IsUnauthorized returns true if the API key was rejected.
func (e *Error) IsUnauthorized() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden
}

// IsRateLimit returns true if the server is shedding load.
func (e *Error) IsRateLimit() bool {
	return e.HTTPStatus == http.StatusTooManyRequests
}

// IsServerError returns true if this is a server-side error.
func (e *Error) IsServerError() bool {
	return e.HTTPStatus >= 500
}

// Retryable returns true if the request can be retried.
func (e *Error) Retryable() bool {
	return e.IsRateLimit() || e.IsServerError()
}

// AsError extracts *Error from an error.
//
// Example:
//
//	if e, ok := qwenserve.AsError(err); ok && e.IsNotFound() {
//	    // model was unloaded on the server
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
