// Package pdf extracts identifiers from article PDFs so that a local copy of
// a paper can be resolved like any other reference.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/OBrink/citation-normalisation/internal/doi"
)

// DOIPages is how many leading pages are searched for a DOI.
const DOIPages = 3

// ExtractDOI returns the first DOI printed on the first pages of the PDF at
// path, or "" if there is none.
func ExtractDOI(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return firstDOI(r, DOIPages), nil
}

// ExtractDOIReader is ExtractDOI for an in-memory PDF.
func ExtractDOIReader(ra io.ReaderAt, size int64) (string, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}
	return firstDOI(r, DOIPages), nil
}

func firstDOI(r *pdf.Reader, maxPages int) string {
	for _, text := range pageTexts(r, maxPages) {
		if d := FindDOI(text); d != "" {
			return d
		}
	}
	return ""
}

// pageTexts returns the extracted text of each readable page. Pages that
// fail to decode are skipped.
func pageTexts(r *pdf.Reader, maxPages int) []string {
	n := r.NumPage()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	var texts []string
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// FindDOI finds a DOI in extracted page text. Text extraction often breaks
// "doi: 10.1248/cpb.37.819" into pieces, so a DOI label followed by a line
// break is rejoined before searching.
func FindDOI(text string) string {
	text = strings.NewReplacer("\u00ad", "", "\r", "").Replace(text)
	if d, ok := doi.Extract(text); ok {
		return d
	}
	joined := strings.Join(strings.Fields(text), " ")
	joined = strings.ReplaceAll(joined, "10. ", "10.")
	joined = strings.ReplaceAll(joined, "/ ", "/")
	if d, ok := doi.Extract(joined); ok {
		return d
	}
	return ""
}
