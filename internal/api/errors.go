package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthRequired means the request needs a valid token (401/403).
	ErrAuthRequired = errors.New("authentication required")

	// ErrServiceUnavailable means the backend is temporarily down (503).
	ErrServiceUnavailable = errors.New("service unavailable")
)

// StatusError carries a non-2xx response. It unwraps to the matching
// sentinel so callers can classify with errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthRequired
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	}
	return nil
}
