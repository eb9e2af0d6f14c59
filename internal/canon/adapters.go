package canon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/pubmed"
	"github.com/OBrink/citation-normalisation/internal/reference"
	"github.com/OBrink/citation-normalisation/internal/scholar"
)

const journalArticle = "journal-article"

var (
	yearPattern = regexp.MustCompile(`\d{4}`)
	pageDashes  = strings.NewReplacer("--", "-", "\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-", "\u2212", "-")
)

// FromPubMed builds a reference from a PubMed article.
func FromPubMed(a *pubmed.Article) *reference.Reference {
	if a == nil {
		return nil
	}
	journal := a.Journal
	if journal == "" {
		journal = a.JournalAbbrev
	}
	return &reference.Reference{
		Title:    strings.TrimSpace(a.Title),
		Authors:  NormalizeAuthors(PubMedAuthors(a.Authors)),
		Year:     ParseYear(a.Year),
		Journal:  journal,
		Volume:   a.Volume,
		Issue:    a.Issue,
		Pages:    NormalizePages(a.Pages),
		DOI:      a.DOI,
		PMID:     a.PMID,
		Abstract: a.Abstract,
	}
}

// FromCrossref builds a reference from a Crossref work. The container title
// is used as journal only for journal articles; for books and proceedings
// it names the volume, not a journal.
func FromCrossref(w *crossref.Work) *reference.Reference {
	if w == nil {
		return nil
	}
	ref := &reference.Reference{
		Title:    strings.TrimSpace(w.Title.First()),
		Authors:  NormalizeAuthors(CrossrefAuthors(w.Author)),
		Year:     w.Issued.Year(),
		Volume:   w.Volume.First(),
		Issue:    w.Issue.First(),
		Pages:    NormalizePages(w.Page),
		DOI:      w.DOI,
		Abstract: crossref.PlainAbstract(w.Abstract),
	}
	if w.Type == journalArticle {
		ref.Journal = w.ContainerTitle.First()
	}
	return ref
}

// FromScholar builds a reference from a (preferably filled) Google Scholar
// publication.
func FromScholar(p *scholar.Publication) *reference.Reference {
	if p == nil {
		return nil
	}
	bib := p.Bib
	return &reference.Reference{
		Title:   strings.TrimSpace(bib[scholar.BibTitle]),
		Authors: NormalizeAuthors(ScholarlyAuthors(bib[scholar.BibAuthor])),
		Year:    ParseYear(bib[scholar.BibYear]),
		Journal: bib[scholar.BibJournal],
		Volume:  bib[scholar.BibVolume],
		Issue:   bib[scholar.BibNumber],
		Pages:   NormalizePages(bib[scholar.BibPages]),
		DOI:     bib[scholar.BibDOI],
	}
}

// ParseYear returns the first four-digit number in s, or 0.
func ParseYear(s string) int {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

// NormalizePages rewrites page-range dashes to a single hyphen.
func NormalizePages(pages string) string {
	return pageDashes.Replace(strings.TrimSpace(pages))
}
