// Package citation assembles the normalized single-line citation string.
package citation

import (
	"strings"

	"github.com/OBrink/citation-normalisation/internal/normalize"
	"github.com/OBrink/citation-normalisation/internal/reference"
)

const (
	separator = ", "
	doiPrefix = " - DOI: "
)

// Assemble renders ref as
//
//	Authors, Journal, Year, Volume, Pages - DOI: doi
//
// or, without a journal, as "Authors, Title, Year". Missing segments are
// skipped.
func Assemble(ref *reference.Reference) string {
	if ref == nil {
		return ""
	}

	var segments []string
	segments = append(segments, strings.Join(ref.Authors, separator))

	if ref.Journal != "" {
		segments = append(segments,
			normalize.Title(ref.Journal, false),
			ref.YearString(),
			ref.Volume,
			strings.ReplaceAll(ref.Pages, "--", "-"),
		)
	} else {
		segments = append(segments,
			normalize.Title(ref.Title, true),
			ref.YearString(),
		)
	}

	var parts []string
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	out := strings.TrimRight(strings.Join(parts, separator), ", ")

	if ref.DOI != "" {
		out += doiPrefix + ref.DOI
	}
	return out
}
