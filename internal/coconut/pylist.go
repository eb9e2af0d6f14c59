package coconut

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// pyList is a Python list of string literals: ['a', "b", ].
type pyList struct {
	Items []string `"[" ( @String ","? )* "]"`
}

var pyListLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Punct", Pattern: `[\[\],]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var pyListParser = participle.MustBuild[pyList](
	participle.Lexer(pyListLexer),
	participle.Elide("Whitespace"),
)

// ParseList parses a Python list literal of strings. An empty cell, or a
// bare NA, yields no references.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == MissingMarker {
		return nil, nil
	}

	list, err := pyListParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parsing reference list %q: %w", s, err)
	}

	items := make([]string, len(list.Items))
	for i, item := range list.Items {
		items[i] = unquote(item)
	}
	return items, nil
}

// unquote strips the quotes of a Python string literal and resolves the
// escapes that occur in reference strings.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	body := lit[1 : len(lit)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '\'', '"':
			b.WriteByte(body[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
