// Package httpx holds the HTTP plumbing shared by the extension clients:
// JSON request/response handling with a typed error taxonomy, and a reader
// for server-sent event streams.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrUnexpectedShape reports a response body that decoded but did not carry
// the fields the client requires. Raw payloads are never trusted blindly;
// every client validates the decoded shape at the HTTP boundary.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// APIError is a non-2xx backend reply mapped to a typed error.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // backend-specific error code, empty if none
	Message string // human-readable message from the backend, if any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status %d, code %s: %s", e.Status, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// IsAuthError reports whether err is a backend reply indicating invalid,
// expired, or insufficient credentials. Callers clear the stored token set
// for the affected scope when this returns true.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsRateLimited reports whether the backend throttled the request.
// Rate-limit errors are surfaced, never retried automatically.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// IsTransient reports whether err looks like a temporary backend or network
// failure the user may simply retry: a 5xx reply, or a transport-level error
// that never produced a response.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
