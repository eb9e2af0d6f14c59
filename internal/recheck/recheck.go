// Package recheck runs the second, stricter retrieval pass over references
// whose first-pass result could not be confirmed. It searches deeper into
// Crossref's ranking and only accepts a work that matches the parsed
// reference string.
package recheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OBrink/citation-normalisation/internal/canon"
	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/reference"
	"github.com/OBrink/citation-normalisation/internal/refparse"
	"github.com/OBrink/citation-normalisation/internal/resolver"
)

// DefaultRows is how many Crossref results are inspected per query.
const DefaultRows = 200

// DefaultKnownBooks are standard works cited in COCONUT that Crossref does
// not index; references to them are accepted as they are.
var DefaultKnownBooks = []string{"harborne"}

// ErrNoMatch is returned when none of the inspected works matches.
var ErrNoMatch = errors.New("no matching Crossref work")

// Searcher runs Crossref bibliographic searches. *crossref.Client
// implements it.
type Searcher interface {
	Query(ctx context.Context, keyword string, rows int) ([]crossref.Work, error)
}

// Candidate is a reference string selected for the second pass, with the
// records the first pass rejected for it.
type Candidate struct {
	Query    string
	Citation *refparse.Citation
	Rejected []*reference.Reference
}

// GroupRejected indexes rejected-log entries by query, keeping file order.
func GroupRejected(entries []checkpoint.Entry) map[string][]*reference.Reference {
	out := make(map[string][]*reference.Reference)
	for _, e := range entries {
		if e.Ref != nil {
			out[e.Query] = append(out[e.Query], e.Ref)
		}
	}
	return out
}

// Select picks the first-pass entries worth retrying: failures and keyword
// results that do not match their parsed reference string. Queries that do
// not parse, identifier results and known books are left alone. rejected
// holds the first pass's QA-rejected records by query and may be nil.
func Select(entries []checkpoint.Entry, rejected map[string][]*reference.Reference, knownBooks []string) []Candidate {
	var out []Candidate
	for _, e := range entries {
		cit, err := refparse.Parse(e.Query)
		if err != nil {
			continue
		}
		if isKnownBook(e.Query, knownBooks) {
			continue
		}
		if e.Ref != nil {
			if e.Ref.Provenance.QueryKind.Trusted() || refparse.SamePublication(cit, e.Ref) {
				continue
			}
		}
		out = append(out, Candidate{Query: e.Query, Citation: cit, Rejected: rejected[e.Query]})
	}
	return out
}

// Queries returns the query strings of candidates.
func Queries(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Query
	}
	return out
}

func isKnownBook(query string, books []string) bool {
	lower := strings.ToLower(query)
	for _, b := range books {
		if b != "" && strings.Contains(lower, strings.ToLower(b)) {
			return true
		}
	}
	return false
}

// Options configures a Checker.
type Options struct {
	Rows    int
	Retries int

	// Rejected are first-pass records by query. A record that passes the
	// strict match is accepted without searching Crossref.
	Rejected map[string][]*reference.Reference
}

// RejectedOf collects the rejected records of candidates by query.
func RejectedOf(candidates []Candidate) map[string][]*reference.Reference {
	out := make(map[string][]*reference.Reference)
	for _, c := range candidates {
		if len(c.Rejected) > 0 {
			out[c.Query] = c.Rejected
		}
	}
	return out
}

// Checker resolves queries with the strict Crossref search.
type Checker struct {
	crossref Searcher
	opts     Options
}

// NewChecker creates a Checker.
func NewChecker(cr Searcher, opts Options) *Checker {
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	if opts.Retries <= 0 {
		opts.Retries = resolver.DefaultRetries
	}
	return &Checker{crossref: cr, opts: opts}
}

// Resolve returns the first record that is complete and matches the parsed
// reference string: a first-pass rejected record if one matches, otherwise
// one of the top Crossref results.
func (c *Checker) Resolve(ctx context.Context, query string) (*reference.Reference, error) {
	cit, err := refparse.Parse(query)
	if err != nil {
		return nil, err
	}

	for _, ref := range c.opts.Rejected[query] {
		if ref.IsMinimallyComplete() && refparse.SamePublication(cit, ref) {
			return ref, nil
		}
	}

	works, err := resolver.Retry(ctx, c.opts.Retries, crossref.IsTransient, func(ctx context.Context) ([]crossref.Work, error) {
		return c.crossref.Query(ctx, query, c.opts.Rows)
	})
	if err != nil {
		return nil, fmt.Errorf("searching Crossref: %w", err)
	}

	for i := range works {
		ref := canon.FromCrossref(&works[i])
		if !ref.IsMinimallyComplete() || !refparse.SamePublication(cit, ref) {
			continue
		}
		ref.Provenance = reference.Provenance{
			Source:     reference.SourceCrossref,
			QueryKind:  reference.QueryKeyword,
			QueryValue: query,
		}
		return ref, nil
	}
	return nil, fmt.Errorf("%w among %d results for %q", ErrNoMatch, len(works), query)
}
