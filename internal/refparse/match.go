package refparse

import (
	"strings"

	"github.com/OBrink/citation-normalisation/internal/reference"
)

// SamePublication reports whether ref plausibly is the publication c
// describes. The years must agree, no present volume or first page may
// conflict, and at least two of first-author surname, volume and first
// page must match.
func SamePublication(c *Citation, ref *reference.Reference) bool {
	if c == nil || ref == nil || c.Year == 0 || c.Year != ref.Year {
		return false
	}

	matches := 0

	if c.Volume != "" && ref.Volume != "" {
		if leadingNumber(c.Volume) != leadingNumber(ref.Volume) {
			return false
		}
		matches++
	}

	if first := c.FirstPage(); first != "" && ref.Pages != "" {
		if first != leadingNumber(ref.Pages) {
			return false
		}
		matches++
	}

	if surname := strings.ToLower(c.FirstAuthorSurname()); surname != "" {
		for _, a := range ref.Authors {
			if strings.ToLower(reference.Surname(a)) == surname {
				matches++
				break
			}
		}
	}

	return matches >= 2
}

func leadingNumber(s string) string {
	return digits.FindString(s)
}
