package scholar

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted indicates the result iterator has no more publications.
	ErrExhausted = errors.New("no more Google Scholar results")

	// ErrTooManyTries indicates Google Scholar refused the request
	// (HTTP 429 or a captcha page).
	ErrTooManyTries = errors.New("too many requests to Google Scholar")

	// ErrNoBibTeX indicates the cite popup had no BibTeX export link.
	ErrNoBibTeX = errors.New("no BibTeX export for publication")
)

// StatusError represents an unexpected HTTP status from Google Scholar.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Google Scholar returned status %d for %s", e.StatusCode, e.URL)
}
