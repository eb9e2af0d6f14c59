package crossref

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the Crossref client.
var (
	// ErrNotFound indicates the DOI is not registered with Crossref or a search had no hits.
	ErrNotFound = errors.New("not found in Crossref")

	// ErrTransient indicates a network failure, timeout, rate limit or server
	// error. Callers may retry.
	ErrTransient = errors.New("transient Crossref error")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Crossref")
)

// APIError represents a non-success HTTP status from the Crossref API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Crossref API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match the sentinel errors the status code maps to.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		return ErrTransient
	}
	return nil
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient returns true if the error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
