package crossref

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var (
	jatsTitleRe = regexp.MustCompile(`(?s)<jats:title>.*?</jats:title>`)
	jatsTagRe   = regexp.MustCompile(`<(/?)jats:([a-zA-Z-]+)`)
)

// jatsToHTML maps JATS elements that have an HTML counterpart.
// Everything else becomes a span so only its text survives.
var jatsToHTML = map[string]string{
	"p":      "p",
	"italic": "em",
	"bold":   "strong",
	"sub":    "sub",
	"sup":    "sup",
	"sec":    "div",
}

// PlainAbstract converts a JATS-tagged Crossref abstract into plain
// markdown text. Section titles ("Abstract") are dropped.
func PlainAbstract(jats string) string {
	if strings.TrimSpace(jats) == "" {
		return ""
	}

	html := jatsTitleRe.ReplaceAllString(jats, "")
	html = jatsTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		m := jatsTagRe.FindStringSubmatch(tag)
		name, ok := jatsToHTML[m[2]]
		if !ok {
			name = "span"
		}
		return "<" + m[1] + name
	})

	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(jats)
	}
	return strings.TrimSpace(text)
}
