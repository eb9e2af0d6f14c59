package resolver

import (
	"context"

	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/pubmed"
	"github.com/OBrink/citation-normalisation/internal/scholar"
)

// PubMedSource looks up PubMed articles. *pubmed.Client implements it.
type PubMedSource interface {
	FetchByDOI(ctx context.Context, doi string) (*pubmed.Article, error)
	FetchByPMID(ctx context.Context, pmid string) (*pubmed.Article, error)
}

// CrossrefSource looks up Crossref works. *crossref.Client implements it.
type CrossrefSource interface {
	ByDOI(ctx context.Context, doi string) (*crossref.Work, error)
	Query(ctx context.Context, keyword string, rows int) ([]crossref.Work, error)
}

// ScholarSource returns the filled top Google Scholar result for a keyword.
// *scholar.Client implements it.
type ScholarSource interface {
	First(ctx context.Context, keyword string) (*scholar.Publication, error)
}
