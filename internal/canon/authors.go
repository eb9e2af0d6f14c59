// Package canon maps the raw records of each bibliographic source into the
// canonical reference.Reference.
package canon

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/normalize"
	"github.com/OBrink/citation-normalisation/internal/reference"
)

// AuthorKind tags which raw author representation an AuthorList holds.
type AuthorKind int

const (
	// AuthorsScholarly is a single " and "-joined BibTeX author string.
	AuthorsScholarly AuthorKind = iota
	// AuthorsPubMed is a list of "Surname Initials" strings.
	AuthorsPubMed
	// AuthorsCrossref is a list of Crossref contributor objects.
	AuthorsCrossref
)

func (k AuthorKind) String() string {
	switch k {
	case AuthorsScholarly:
		return "scholarly"
	case AuthorsPubMed:
		return "pubmed"
	case AuthorsCrossref:
		return "crossref"
	}
	return "unknown"
}

// AuthorList is a raw author field of one of the three sources. Only the
// field matching Kind is read.
type AuthorList struct {
	Kind      AuthorKind
	Scholarly string
	PubMed    []string
	Crossref  []crossref.Contributor
}

// ScholarlyAuthors wraps a BibTeX author string.
func ScholarlyAuthors(s string) AuthorList {
	return AuthorList{Kind: AuthorsScholarly, Scholarly: s}
}

// PubMedAuthors wraps PubMed "Lustig PA" author entries.
func PubMedAuthors(names []string) AuthorList {
	return AuthorList{Kind: AuthorsPubMed, PubMed: names}
}

// CrossrefAuthors wraps Crossref contributors.
func CrossrefAuthors(contributors []crossref.Contributor) AuthorList {
	return AuthorList{Kind: AuthorsCrossref, Crossref: contributors}
}

// NormalizeAuthors converts a raw author list into canonical author strings
// of the form "Surname, I., I.", one per author.
func NormalizeAuthors(list AuthorList) []string {
	switch list.Kind {
	case AuthorsScholarly:
		return scholarlyAuthors(list.Scholarly)
	case AuthorsPubMed:
		return pubmedAuthors(list.PubMed)
	case AuthorsCrossref:
		return crossrefAuthors(list.Crossref)
	}
	return nil
}

var andSeparator = regexp.MustCompile(`\s+(?:and|And|AND)\s+`)

// scholarlyAuthors handles "Ito, Chihiro and Furukawa, Hiroshi". The part
// before the first comma is the surname; every later word becomes an
// initial. Names without a comma take their first word as the surname.
func scholarlyAuthors(s string) []string {
	var out []string
	for _, name := range andSeparator.Split(strings.TrimSpace(s), -1) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var surname string
		var given []string
		if i := strings.Index(name, ","); i >= 0 {
			surname = strings.TrimSpace(name[:i])
			given = strings.FieldsFunc(name[i+1:], func(r rune) bool {
				return r == ',' || unicode.IsSpace(r)
			})
		} else {
			fields := strings.Fields(name)
			surname, given = fields[0], fields[1:]
		}
		if surname == "" {
			continue
		}

		out = append(out, reference.FormatAuthor(normalize.NameSpelling(surname), initials(given)...))
	}
	return out
}

// pubmedAuthors handles "Lustig PA". An all-uppercase token is a run of
// initials, one per letter; any other token is a surname segment.
//
// Every token, surname included, is followed by a period, so "Lustig PA"
// becomes "Lustig., P., A." rather than "Lustig, P., A.". This is the PubMed
// author rule the normalized citations have always used; do not drop the
// period. reference.Surname strips it for QA and matching.
func pubmedAuthors(names []string) []string {
	var out []string
	for _, name := range names {
		var parts []string
		for _, tok := range strings.Fields(name) {
			if isInitialsRun(tok) {
				for _, r := range tok {
					parts = append(parts, string(r)+".")
				}
				continue
			}
			parts = append(parts, tok+".")
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, ", "))
		}
	}
	return out
}

// crossrefAuthors handles family/given objects. Organisations, which only
// carry a name, are kept verbatim.
func crossrefAuthors(contributors []crossref.Contributor) []string {
	var out []string
	for _, c := range contributors {
		switch {
		case c.IsOrganization():
			if name := strings.TrimSpace(c.Name); name != "" {
				out = append(out, name)
			}
		case c.Family != "":
			family := normalize.NameSpelling(strings.TrimSpace(c.Family))
			out = append(out, reference.FormatAuthor(family, initials(strings.Fields(c.Given))...))
		case c.Given != "":
			out = append(out, normalize.NameSpelling(strings.TrimSpace(c.Given)))
		}
	}
	return out
}

// initials reduces given-name tokens to their upper-cased first letter.
func initials(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".-")
		if tok == "" {
			continue
		}
		out = append(out, strings.ToUpper(normalize.Initial(tok)))
	}
	return out
}

// isInitialsRun reports whether tok is made of upper-case letters only.
func isInitialsRun(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
