// Package doi finds and normalizes Digital Object Identifiers in free text.
package doi

import (
	"regexp"
	"strings"
)

// pattern matches "10." + a registrant code of 4+ digits with optional
// dot-separated sub-codes, a slash, then a suffix without quotes,
// ampersands, angle brackets or whitespace.
var pattern = regexp.MustCompile(`10\.[0-9]{4,}(?:\.[0-9]+)*/[^"&'<>\s]+`)

// Extract returns the first DOI found in s.
func Extract(s string) (string, bool) {
	match := pattern.FindString(s)
	if match == "" {
		return "", false
	}
	match = trimTrailingPunctuation(match)
	if !isValid(match) {
		return "", false
	}
	return match, true
}

// trimTrailingPunctuation removes sentence punctuation that directly follows
// a DOI in running text. A closing parenthesis is kept when it balances an
// opening one inside the DOI, as in 10.1016/0006-2952(89)90001-2).
func trimTrailingPunctuation(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		switch last {
		case '.', ',', ';', ':':
			s = s[:len(s)-1]
			continue
		case ')', ']':
			open := byte('(')
			if last == ']' {
				open = '['
			}
			if strings.Count(s, string(open)) < strings.Count(s, string(last)) {
				s = s[:len(s)-1]
				continue
			}
		}
		return s
	}
	return s
}

// isValid performs the same sanity checks as the extraction pattern after
// trimming: a 10. prefix and a non-empty suffix after the slash.
func isValid(doi string) bool {
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// Normalize normalizes a DOI for comparison.
// It removes common URL prefixes (https://doi.org/, doi:) and lowercases.
func Normalize(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			lower = strings.TrimSpace(lower[len(prefix):])
			break
		}
	}
	return lower
}

// Equal reports whether two DOIs refer to the same object.
func Equal(a, b string) bool {
	return a != "" && Normalize(a) == Normalize(b)
}

// IsPMID reports whether s is a PubMed identifier: a non-empty run of ASCII digits.
func IsPMID(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
