// Package reference defines the canonical reference record that every source is normalized into.
package reference

import "strconv"

// Source identifies which bibliographic service produced a record.
type Source string

const (
	SourcePubMed    Source = "pubmed"
	SourceCrossref  Source = "crossref"
	SourceScholarly Source = "scholarly"
)

// QueryKind identifies how a record was looked up. It decides whether the
// record is trusted as-is or must pass the keyword QA check.
type QueryKind string

const (
	QueryDOI     QueryKind = "DOI"
	QueryPMID    QueryKind = "PMID"
	QueryKeyword QueryKind = "KEYWORD"
)

// Trusted reports whether records obtained by this kind of query are
// accepted without confirmation. Direct identifier lookups are authoritative.
func (k QueryKind) Trusted() bool {
	return k == QueryDOI || k == QueryPMID
}

// Provenance records where an accepted record came from.
type Provenance struct {
	Source     Source    `json:"source"`
	QueryKind  QueryKind `json:"query_kind"`
	QueryValue string    `json:"query_value"`
}

// Reference is the canonical record produced by the source adapters.
type Reference struct {
	// Required
	Title   string   `json:"title"`
	Authors []string `json:"authors"` // "Surname, I., I."
	Year    int      `json:"year"`    // 0 if unknown

	// Optional bibliographic details
	Journal  string `json:"journal,omitempty"`
	Volume   string `json:"volume,omitempty"`
	Issue    string `json:"issue,omitempty"`
	Pages    string `json:"pages,omitempty"` // single hyphen range separator
	DOI      string `json:"doi,omitempty"`
	PMID     string `json:"pmid,omitempty"`
	Abstract string `json:"abstract,omitempty"`

	Provenance Provenance `json:"provenance"`
}

// IsMinimallyComplete reports whether title, authors and year are all present.
func (r *Reference) IsMinimallyComplete() bool {
	if r == nil {
		return false
	}
	if r.Title == "" || r.Year <= 0 || len(r.Authors) == 0 {
		return false
	}
	for _, a := range r.Authors {
		if a == "" {
			return false
		}
	}
	return true
}

// YearString returns the year as a decimal string, or "" if unknown.
func (r *Reference) YearString() string {
	if r.Year <= 0 {
		return ""
	}
	return strconv.Itoa(r.Year)
}

// FirstAuthorSurname returns the surname of the first author, or "".
func (r *Reference) FirstAuthorSurname() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return Surname(r.Authors[0])
}
