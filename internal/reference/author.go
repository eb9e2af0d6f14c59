package reference

import "strings"

// Author separators used in canonical author strings.
const (
	surnameSep = ", "
	initialSep = ", "
)

// FormatAuthor builds a canonical author string from a surname and initials:
// FormatAuthor("Lustig", "P", "A") == "Lustig, P., A.".
func FormatAuthor(surname string, initials ...string) string {
	var b strings.Builder
	b.WriteString(surname)
	for _, ini := range initials {
		if ini == "" {
			continue
		}
		b.WriteString(initialSep)
		b.WriteString(ini)
		b.WriteString(".")
	}
	return b.String()
}

// Surname returns the part of a canonical author string before the first
// comma, with surrounding whitespace and a trailing period removed.
func Surname(author string) string {
	surname := author
	if i := strings.Index(author, ","); i >= 0 {
		surname = author[:i]
	}
	return strings.TrimSuffix(strings.TrimSpace(surname), ".")
}
