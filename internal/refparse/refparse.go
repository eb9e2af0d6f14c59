// Package refparse parses the terse reference strings of the COCONUT
// database, such as
//
//	Ito,Chem. Pharm. Bull.,37,(1989),819
//
// into their bibliographic parts.
package refparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Citation is a parsed reference string.
type Citation struct {
	Authors []string `json:"authors,omitempty"`
	Journal string   `json:"journal,omitempty"`
	Volume  string   `json:"volume,omitempty"`
	Year    int      `json:"year"`
	Pages   string   `json:"pages,omitempty"`
}

// grammar is the raw token layout: comma-separated fields, a parenthesized
// year, then optional trailing fields (pages first).
type grammar struct {
	Fields []string `( @Text ","? )+`
	Year   string   `@Year`
	Rest   []string `( "," @Text? )*`
}

var citationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Year", Pattern: `\(\s*\d{4}[a-z]?\s*\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
	// Free text, which may contain parenthesized non-year groups like "(Tokyo)".
	{Name: "Text", Pattern: `(?:[^,(\s]|\([^)\d][^)]*\))(?:[^,(]|\([^)\d][^)]*\))*`},
})

var citationParser = participle.MustBuild[grammar](
	participle.Lexer(citationLexer),
	participle.Elide("Whitespace"),
)

var (
	volumePattern = regexp.MustCompile(`^(?:vol\.?\s*)?\d+[A-Za-z]?(?:\s*\(\d+\))?$`)
	digits        = regexp.MustCompile(`\d+`)
)

// Parse parses a reference string. Strings without a parenthesized year are
// rejected.
func Parse(s string) (*Citation, error) {
	g, err := citationParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parsing reference %q: %w", s, err)
	}

	c := &Citation{}
	c.Year, _ = strconv.Atoi(digits.FindString(g.Year))

	fields := trimAll(g.Fields)
	if n := len(fields); n > 1 && volumePattern.MatchString(fields[n-1]) {
		c.Volume = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(fields[n-1], "vol"), "."))
		fields = fields[:n-1]
	}
	if n := len(fields); n > 0 {
		c.Journal = fields[n-1]
		fields = fields[:n-1]
	}
	for _, f := range fields {
		if f != "" {
			c.Authors = append(c.Authors, f)
		}
	}

	for _, r := range trimAll(g.Rest) {
		if r != "" {
			c.Pages = r
			break
		}
	}
	return c, nil
}

// FirstPage returns the leading number of the page range, or "".
func (c *Citation) FirstPage() string {
	return digits.FindString(c.Pages)
}

// FirstAuthorSurname returns the first author's surname, without any
// "et al." suffix or initials.
func (c *Citation) FirstAuthorSurname() string {
	if len(c.Authors) == 0 {
		return ""
	}
	name := strings.TrimSpace(c.Authors[0])
	if i := strings.Index(strings.ToLower(name), " et al"); i >= 0 {
		name = name[:i]
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	// "Ito C." or "C. Ito": the surname is the longest token.
	surname := fields[0]
	for _, f := range fields[1:] {
		if len(strings.Trim(f, ".")) > len(strings.Trim(surname, ".")) {
			surname = f
		}
	}
	return strings.Trim(surname, ".")
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
