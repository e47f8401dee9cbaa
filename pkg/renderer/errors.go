package renderer

import (
	"fmt"
	"net/http"
)

// StatusError signals a specific HTTP-like status from within a render step,
// e.g. "not found" raised by a data fetch. The renderer intercepts it and
// dispatches to that status's page instead of treating it as a failure.
type StatusError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Code, http.StatusText(e.Code))
}

// StatusCode returns the signaled status.
func (e *StatusError) StatusCode() int { return e.Code }

// NewStatusError builds a StatusError for code.
func NewStatusError(code int) *StatusError {
	return &StatusError{Code: code}
}

// NotFound is a convenience StatusError for 404, for use inside data fetches.
func NotFound() *StatusError {
	return &StatusError{Code: http.StatusNotFound}
}

// UnsafeRedirectError reports a redirect route whose destination failed
// validation (absolute or protocol-relative URLs are never honored).
type UnsafeRedirectError struct {
	Target string
}

func (e *UnsafeRedirectError) Error() string {
	return fmt.Sprintf("renderer: unsafe redirect target %q", e.Target)
}
