package resolver

import (
	"strings"

	"github.com/OBrink/citation-normalisation/internal/reference"
)

// Accept reports whether a record may be returned for query. Records found
// by DOI or PMID are trusted. Keyword results must have their year and the
// first author's surname (case-insensitively) appear in the query.
func Accept(ref *reference.Reference, query string) bool {
	if ref == nil {
		return false
	}
	if ref.Provenance.QueryKind.Trusted() {
		return true
	}

	year := ref.YearString()
	surname := strings.ToLower(ref.FirstAuthorSurname())
	if year == "" || surname == "" {
		return false
	}
	return strings.Contains(query, year) && strings.Contains(strings.ToLower(query), surname)
}
