package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyURL      = errors.New("backend: base url is empty")
	ErrInvalidURL    = errors.New("backend: invalid base url")
	ErrRequestFailed = errors.New("backend: request failed")
	ErrDecode        = errors.New("backend: failed to decode response")
	ErrNotFound      = errors.New("backend: not found")
	ErrUnauthorized  = errors.New("backend: unauthorized")
	ErrMissingID     = errors.New("backend: document id is required")

	// Upload validation errors.
	ErrEmptyFile    = errors.New("backend: file is empty")
	ErrFileTooLarge = errors.New("backend: file exceeds size limit")
	ErrInvalidMIME  = errors.New("backend: file type not allowed")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses to sentinel errors so callers can use
// errors.Is(err, ErrNotFound).
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}
