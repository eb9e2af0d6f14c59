package pubmed

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
)

var yearPattern = regexp.MustCompile(`\b(1[5-9]|20)\d{2}\b`)

// ParseArticles parses an efetch PubmedArticleSet document.
func ParseArticles(data []byte) ([]Article, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing XML: %v", ErrInvalidResponse, err)
	}

	var articles []Article
	for _, node := range xmlquery.Find(root, "//PubmedArticle") {
		articles = append(articles, parseArticle(node))
	}
	return articles, nil
}

func parseArticle(node *xmlquery.Node) Article {
	art := xmlquery.FindOne(node, "MedlineCitation/Article")

	a := Article{
		PMID:          text(node, "MedlineCitation/PMID"),
		Title:         strings.TrimSuffix(text(art, "ArticleTitle"), "."),
		Journal:       text(art, "Journal/Title"),
		JournalAbbrev: text(art, "Journal/ISOAbbreviation"),
		Volume:        text(art, "Journal/JournalIssue/Volume"),
		Issue:         text(art, "Journal/JournalIssue/Issue"),
		Pages:         text(art, "Pagination/MedlinePgn"),
		Year:          pubYear(art),
		DOI:           articleDOI(node),
	}

	for _, author := range xmlquery.Find(art, "AuthorList/Author") {
		if name := authorName(author); name != "" {
			a.Authors = append(a.Authors, name)
		}
	}

	var abstract []string
	for _, part := range xmlquery.Find(art, "Abstract/AbstractText") {
		if t := strings.TrimSpace(part.InnerText()); t != "" {
			abstract = append(abstract, t)
		}
	}
	a.Abstract = strings.Join(abstract, "\n")

	return a
}

// authorName formats an Author element as "LastName Initials", or the
// collective name for group authors.
func authorName(author *xmlquery.Node) string {
	if collective := text(author, "CollectiveName"); collective != "" {
		return collective
	}
	last := text(author, "LastName")
	if last == "" {
		return ""
	}
	initials := text(author, "Initials")
	if initials == "" {
		return last
	}
	return last + " " + initials
}

// pubYear reads the journal issue year, falling back to a year found in
// MedlineDate ("1989 Mar-Apr") or the article date.
func pubYear(art *xmlquery.Node) string {
	if y := text(art, "Journal/JournalIssue/PubDate/Year"); y != "" {
		return y
	}
	if y := yearPattern.FindString(text(art, "Journal/JournalIssue/PubDate/MedlineDate")); y != "" {
		return y
	}
	return text(art, "ArticleDate/Year")
}

// articleDOI prefers the PubmedData article id, then the ELocationID.
func articleDOI(node *xmlquery.Node) string {
	for _, id := range xmlquery.Find(node, "PubmedData/ArticleIdList/ArticleId") {
		if id.SelectAttr("IdType") == "doi" {
			return strings.TrimSpace(id.InnerText())
		}
	}
	for _, id := range xmlquery.Find(node, "MedlineCitation/Article/ELocationID") {
		if id.SelectAttr("EIdType") == "doi" {
			return strings.TrimSpace(id.InnerText())
		}
	}
	return ""
}

// text returns the trimmed inner text of the first node matching expr.
func text(node *xmlquery.Node, expr string) string {
	if node == nil {
		return ""
	}
	n := xmlquery.FindOne(node, expr)
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.InnerText()), " ")
}
