package resolver

import (
	"context"
	"sync"

	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/pubmed"
	"github.com/OBrink/citation-normalisation/internal/reference"
	"github.com/OBrink/citation-normalisation/internal/scholar"
)

// callLog records source calls in order across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

type fakePubMed struct {
	log    *callLog
	byDOI  map[string]*pubmed.Article
	byPMID map[string]*pubmed.Article
}

func (f *fakePubMed) FetchByDOI(_ context.Context, d string) (*pubmed.Article, error) {
	f.log.add("pubmed.doi:" + d)
	if a, ok := f.byDOI[d]; ok {
		return a, nil
	}
	return nil, pubmed.ErrNotFound
}

func (f *fakePubMed) FetchByPMID(_ context.Context, pmid string) (*pubmed.Article, error) {
	f.log.add("pubmed.pmid:" + pmid)
	if a, ok := f.byPMID[pmid]; ok {
		return a, nil
	}
	return nil, pubmed.ErrNotFound
}

type fakeCrossref struct {
	log *callLog

	byDOI   map[string]*crossref.Work
	queries map[string][]crossref.Work

	// transient makes the first n calls fail with a transient error.
	transient int
}

func (f *fakeCrossref) ByDOI(_ context.Context, d string) (*crossref.Work, error) {
	f.log.add("crossref.doi:" + d)
	if f.transient > 0 {
		f.transient--
		return nil, &crossref.APIError{StatusCode: 503, Message: "unavailable"}
	}
	if w, ok := f.byDOI[d]; ok {
		return w, nil
	}
	return nil, crossref.ErrNotFound
}

func (f *fakeCrossref) Query(_ context.Context, keyword string, rows int) ([]crossref.Work, error) {
	f.log.add("crossref.query:" + keyword)
	if f.transient > 0 {
		f.transient--
		return nil, crossref.ErrTransient
	}
	if w, ok := f.queries[keyword]; ok {
		if len(w) > rows {
			w = w[:rows]
		}
		return w, nil
	}
	return nil, crossref.ErrNotFound
}

type fakeScholar struct {
	log     *callLog
	results map[string]*scholar.Publication
	err     error
}

func (f *fakeScholar) First(_ context.Context, keyword string) (*scholar.Publication, error) {
	f.log.add("scholar:" + keyword)
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.results[keyword]; ok {
		return p, nil
	}
	return nil, scholar.ErrExhausted
}

type event struct {
	state   string
	source  reference.Source
	outcome Outcome
}

type recordingObserver struct {
	mu     sync.Mutex
	events []event
}

func (o *recordingObserver) ObserveState(st string, source reference.Source, outcome Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event{st, source, outcome})
}

func intPtr(i int) *int { return &i }

// itoArticle is the PubMed record of Ito et al. 1989.
func itoArticle() *pubmed.Article {
	return &pubmed.Article{
		PMID:    "2758924",
		Title:   "Constituents of Clausena excavata",
		Authors: []string{"Ito C", "Furukawa H"},
		Journal: "Chemical & pharmaceutical bulletin",
		Volume:  "37",
		Pages:   "819-23",
		Year:    "1989",
		DOI:     "10.1248/cpb.37.819",
	}
}

// itoWork is the Crossref record of Ito et al. 1989.
func itoWork() crossref.Work {
	return crossref.Work{
		DOI:            "10.1248/cpb.37.819",
		Type:           "journal-article",
		Title:          crossref.StringList{"Constituents of Clausena excavata"},
		ContainerTitle: crossref.StringList{"CHEMICAL AND PHARMACEUTICAL BULLETIN"},
		Volume:         crossref.StringList{"37"},
		Page:           "819-823",
		Author:         []crossref.Contributor{{Given: "Chihiro", Family: "Ito"}},
		Issued:         crossref.DateParts{Parts: [][]*int{{intPtr(1989)}}},
	}
}
