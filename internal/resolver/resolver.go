// Package resolver turns an unstructured citation (free text, DOI or PMID)
// into a canonical reference by trying the bibliographic sources in a fixed
// order and returning the first adequate record.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/OBrink/citation-normalisation/internal/canon"
	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/doi"
	"github.com/OBrink/citation-normalisation/internal/reference"
)

// DefaultRetries is the attempt budget for transient Crossref errors.
const DefaultRetries = 5

// ErrExhausted is returned when no source produced an accepted record.
var ErrExhausted = errors.New("unable to retrieve information")

// State names, in trial order.
const (
	StateDOI             = "doi"
	StatePMID            = "pmid"
	StateCrossrefKeyword = "crossref-keyword"
	StateScholarKeyword  = "scholar-keyword"
)

// Outcome is the result of one state's attempt.
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeIncomplete Outcome = "incomplete"
	OutcomeRejected   Outcome = "rejected"
)

// Observer is notified of every state attempt.
type Observer interface {
	ObserveState(state string, source reference.Source, outcome Outcome)
}

// Options configures a Resolver.
type Options struct {
	// Retries is the attempt budget for transient Crossref errors.
	Retries int

	// OnlyIdentifiers limits resolution to the DOI and PMID states.
	OnlyIdentifiers bool

	Logger   *slog.Logger
	Observer Observer
}

// Result is the detailed outcome of a resolution.
type Result struct {
	// Accepted is the returned record, nil if the chain was exhausted.
	Accepted *reference.Reference

	// Rejected holds complete keyword results that failed the QA check,
	// kept for a stricter second pass.
	Rejected []*reference.Reference
}

// Resolver runs the fallback chain. It holds no per-resolution state and is
// safe for concurrent use when its sources are.
type Resolver struct {
	pubmed   PubMedSource
	crossref CrossrefSource
	scholar  ScholarSource
	opts     Options
	logger   *slog.Logger
	states   []state

	extractDOI func(string) (string, bool)
}

// state is one step of the chain: it is tried when enter holds for the
// input, and its record is checked according to kind.
type state struct {
	name  string
	kind  reference.QueryKind
	enter func(input string) bool
	query func(ctx context.Context, input string) (*reference.Reference, reference.Source, error)
	value func(input string) string
}

// New creates a Resolver. scholar may be nil to disable the Google Scholar
// state.
func New(pm PubMedSource, cr CrossrefSource, sch ScholarSource, opts Options) *Resolver {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := &Resolver{
		pubmed:     pm,
		crossref:   cr,
		scholar:    sch,
		opts:       opts,
		logger:     logger,
		extractDOI: doi.Extract,
	}
	r.states = r.buildStates()
	return r
}

func (r *Resolver) buildStates() []state {
	identity := func(input string) string { return input }

	states := []state{
		{
			name: StateDOI,
			kind: reference.QueryDOI,
			enter: func(input string) bool {
				_, ok := r.extractDOI(input)
				return ok
			},
			query: r.queryDOI,
			value: func(input string) string {
				d, _ := r.extractDOI(input)
				return d
			},
		},
		{
			name:  StatePMID,
			kind:  reference.QueryPMID,
			enter: doi.IsPMID,
			query: r.queryPMID,
			value: identity,
		},
	}
	if r.opts.OnlyIdentifiers {
		return states
	}

	states = append(states, state{
		name:  StateCrossrefKeyword,
		kind:  reference.QueryKeyword,
		enter: func(string) bool { return true },
		query: r.queryCrossrefKeyword,
		value: identity,
	})
	if r.scholar != nil {
		states = append(states, state{
			name:  StateScholarKeyword,
			kind:  reference.QueryKeyword,
			enter: func(string) bool { return true },
			query: r.queryScholarKeyword,
			value: identity,
		})
	}
	return states
}

// StateNames lists the states in the order they are tried.
func (r *Resolver) StateNames() []string {
	names := make([]string, len(r.states))
	for i, st := range r.states {
		names[i] = st.name
	}
	return names
}

// Resolve returns the first accepted record for input, or ErrExhausted.
func (r *Resolver) Resolve(ctx context.Context, input string) (*reference.Reference, error) {
	res, err := r.ResolveDetailed(ctx, input)
	if err != nil {
		return nil, err
	}
	return res.Accepted, nil
}

// ResolveDetailed runs the chain and also reports QA-rejected keyword
// records. Source errors never escape; the only errors returned are
// ErrExhausted and context cancellation.
func (r *Resolver) ResolveDetailed(ctx context.Context, input string) (*Result, error) {
	res := &Result{}

	for _, st := range r.states {
		if !st.enter(input) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ref, source, err := st.query(ctx, input)
		outcome := r.evaluate(st, input, ref, err)
		r.logger.Debug("state finished", "state", st.name, "source", source, "outcome", outcome, "input", input, "error", err)
		if r.opts.Observer != nil {
			r.opts.Observer.ObserveState(st.name, source, outcome)
		}

		switch outcome {
		case OutcomeAccepted:
			res.Accepted = ref
			return res, nil
		case OutcomeRejected:
			res.Rejected = append(res.Rejected, ref)
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, fmt.Errorf("%w based on %q", ErrExhausted, input)
}

// evaluate checks a state's record for completeness and, for keyword
// queries, against the QA heuristic. Provenance is attached to every
// complete record.
func (r *Resolver) evaluate(st state, input string, ref *reference.Reference, err error) Outcome {
	if err != nil || ref == nil {
		return OutcomeNotFound
	}
	if !ref.IsMinimallyComplete() {
		return OutcomeIncomplete
	}
	ref.Provenance.QueryKind = st.kind
	ref.Provenance.QueryValue = st.value(input)
	if !Accept(ref, input) {
		return OutcomeRejected
	}
	return OutcomeAccepted
}

// queryDOI tries PubMed first and falls back to Crossref when PubMed has no
// complete record for the DOI.
func (r *Resolver) queryDOI(ctx context.Context, input string) (*reference.Reference, reference.Source, error) {
	d, _ := r.extractDOI(input)

	article, err := r.pubmed.FetchByDOI(ctx, d)
	if err == nil {
		ref := canon.FromPubMed(article)
		if ref.IsMinimallyComplete() {
			ref.Provenance.Source = reference.SourcePubMed
			return ref, reference.SourcePubMed, nil
		}
	}
	r.logger.Debug("PubMed has no record for DOI", "doi", d, "error", err)

	work, err := Retry(ctx, r.opts.Retries, crossref.IsTransient, func(ctx context.Context) (*crossref.Work, error) {
		return r.crossref.ByDOI(ctx, d)
	})
	if err != nil {
		return nil, reference.SourceCrossref, fmt.Errorf("fetching DOI %s from Crossref: %w", d, err)
	}
	ref := canon.FromCrossref(work)
	ref.Provenance.Source = reference.SourceCrossref
	return ref, reference.SourceCrossref, nil
}

func (r *Resolver) queryPMID(ctx context.Context, input string) (*reference.Reference, reference.Source, error) {
	article, err := r.pubmed.FetchByPMID(ctx, input)
	if err != nil {
		return nil, reference.SourcePubMed, fmt.Errorf("fetching PMID %s: %w", input, err)
	}
	ref := canon.FromPubMed(article)
	ref.Provenance.Source = reference.SourcePubMed
	return ref, reference.SourcePubMed, nil
}

func (r *Resolver) queryCrossrefKeyword(ctx context.Context, input string) (*reference.Reference, reference.Source, error) {
	works, err := Retry(ctx, r.opts.Retries, crossref.IsTransient, func(ctx context.Context) ([]crossref.Work, error) {
		return r.crossref.Query(ctx, input, 1)
	})
	if err != nil {
		return nil, reference.SourceCrossref, fmt.Errorf("searching Crossref: %w", err)
	}
	if len(works) == 0 {
		return nil, reference.SourceCrossref, crossref.ErrNotFound
	}
	ref := canon.FromCrossref(&works[0])
	ref.Provenance.Source = reference.SourceCrossref
	return ref, reference.SourceCrossref, nil
}

func (r *Resolver) queryScholarKeyword(ctx context.Context, input string) (*reference.Reference, reference.Source, error) {
	pub, err := r.scholar.First(ctx, input)
	if err != nil {
		return nil, reference.SourceScholarly, fmt.Errorf("searching Google Scholar: %w", err)
	}
	ref := canon.FromScholar(pub)
	ref.Provenance.Source = reference.SourceScholarly
	return ref, reference.SourceScholarly, nil
}
