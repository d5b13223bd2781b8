// Package transport implements the authenticated request pipeline: bearer
// injection, a single refresh-and-replay on authorization failure, and
// fail-closed session invalidation surfaced as a typed event.
package transport

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx backend response. Conflict and validation failures
// arrive as APIErrors and are ordinary, displayable errors.
type APIError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// SessionInvalidatedError is returned to the original caller when the
// refresh exchange fails and the session had to be torn down. Cause carries
// the refresh failure, never the intercepted 401.
type SessionInvalidatedError struct {
	Cause error
}

func (e *SessionInvalidatedError) Error() string {
	return fmt.Sprintf("session invalidated: %v", e.Cause)
}

func (e *SessionInvalidatedError) Unwrap() error { return e.Cause }

// ErrNoRefreshCredentials is the refresh failure used when the store holds
// no refresh token or device id at 401 time. No refresh call is attempted.
var ErrNoRefreshCredentials = errors.New("no refresh token or device id in store")
