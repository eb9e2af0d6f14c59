// Package normalize provides the case-normalization primitives shared by the
// source adapters and the citation assembler.
package normalize

import (
	"strings"
	"unicode"
)

// NameSpelling repairs ALL-CAPS or all-lowercase names. The first character
// and every character following a space or hyphen are upper-cased, all other
// letters lower-cased; non-letters are kept.
//
//	NameSpelling("MUSTERMANN, MAX-MORITZ") == "Mustermann, Max-Moritz"
func NameSpelling(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	upperNext := true
	for _, r := range name {
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upperNext = r == ' ' || r == '-'
	}
	return b.String()
}

// Initial returns the first character of a name token, or "" for an empty token.
func Initial(token string) string {
	for _, r := range token {
		return string(r)
	}
	return ""
}
