package errcat

import (
	"fmt"
	"net/http"
)

// ServerError is a failure reported by the AI backend.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai backend: status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("ai backend: status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the backend may succeed on retry.
func (e *ServerError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
