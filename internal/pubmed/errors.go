package pubmed

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the PubMed client.
var (
	// ErrNotFound indicates no PubMed article matches the identifier.
	ErrNotFound = errors.New("not found in PubMed")

	// ErrTransient indicates a network failure, rate limit or server error.
	ErrTransient = errors.New("transient PubMed error")

	// ErrInvalidResponse indicates an unexpected E-utilities response.
	ErrInvalidResponse = errors.New("invalid response from PubMed")
)

// APIError represents a non-success HTTP status from E-utilities.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("PubMed API error (status %d): %s", e.StatusCode, e.Message)
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

// IsNotFound returns true if the error indicates no article was found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient returns true if the error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
