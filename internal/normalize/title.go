package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords are left exactly as written, in any position and any case.
var stopWords = map[string]bool{
	"of": true, "a": true, "from": true, "the": true, "an": true, "not": true,
	"is": true, "that": true, "as": true, "and": true, "are": true,
}

// Title title-cases s: each word gets one leading capital and a lower-case
// rest, except stop words, which are kept as they are. Words are re-joined
// with single spaces.
//
// With onlyIfHomogeneous set, s is only changed when it is entirely upper- or
// entirely lower-case; mixed-case titles are assumed to be cased correctly
// already. Journal names are passed with onlyIfHomogeneous false.
func Title(s string, onlyIfHomogeneous bool) string {
	if onlyIfHomogeneous && !isUpper(s) && !isLower(s) {
		return s
	}

	words := strings.Fields(s)
	for i, word := range words {
		lower := strings.ToLower(word)
		if stopWords[lower] {
			continue
		}
		words[i] = capitalize(lower)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune of an already lower-cased word.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

// isUpper reports whether s has at least one cased letter and no lower-case letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// isLower reports whether s has at least one cased letter and no upper-case letters.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}
