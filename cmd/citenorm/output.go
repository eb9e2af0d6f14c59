package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/OBrink/citation-normalisation/internal/reference"
)

// ListTitleMaxLen is the title width in human list output.
const ListTitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ResolveResponse is the response for a resolved citation.
type ResolveResponse struct {
	Query     string               `json:"query"`
	Citation  string               `json:"citation"`
	Reference *reference.Reference `json:"reference"`
	Rejected  int                  `json:"rejected,omitempty"`
}

// printReferenceHuman prints a resolved reference in human-readable format.
func printReferenceHuman(r ResolveResponse) {
	ref := r.Reference
	outputHuman("%s\n\n", r.Citation)
	outputHuman("  Title:   %s\n", ref.Title)
	outputHuman("  Authors: %s\n", formatAuthorsShort(ref.Authors, 5))
	if ref.Journal != "" {
		outputHuman("  Journal: %s\n", ref.Journal)
	}
	if ref.DOI != "" {
		outputHuman("  DOI:     %s\n", ref.DOI)
	}
	if ref.PMID != "" {
		outputHuman("  PMID:    %s\n", ref.PMID)
	}
	outputHuman("  Source:  %s (%s)\n", ref.Provenance.Source, ref.Provenance.QueryKind)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort joins up to maxCount authors and adds "et al." for the rest.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) <= maxCount {
		return strings.Join(authors, "; ")
	}
	return strings.Join(authors[:maxCount], "; ") + "; et al."
}
