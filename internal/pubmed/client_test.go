package pubmed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const efetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">2758924</PMID>
    <Article PubModel="Print">
      <Journal>
        <JournalIssue CitedMedium="Print">
          <Volume>37</Volume>
          <Issue>3</Issue>
          <PubDate><MedlineDate>1989 Mar-Apr</MedlineDate></PubDate>
        </JournalIssue>
        <Title>Chemical &amp; pharmaceutical bulletin</Title>
        <ISOAbbreviation>Chem Pharm Bull (Tokyo)</ISOAbbreviation>
      </Journal>
      <ArticleTitle>Constituents of Clausena excavata.</ArticleTitle>
      <Pagination><MedlinePgn>819-23</MedlinePgn></Pagination>
      <Abstract>
        <AbstractText Label="BACKGROUND">First part.</AbstractText>
        <AbstractText Label="RESULTS">Second part.</AbstractText>
      </Abstract>
      <AuthorList CompleteYN="Y">
        <Author><LastName>Ito</LastName><ForeName>Chihiro</ForeName><Initials>C</Initials></Author>
        <Author><LastName>Lustig</LastName><ForeName>Peter A</ForeName><Initials>PA</Initials></Author>
        <Author><CollectiveName>COCONUT Consortium</CollectiveName></Author>
      </AuthorList>
    </Article>
  </MedlineCitation>
  <PubmedData>
    <ArticleIdList>
      <ArticleId IdType="pubmed">2758924</ArticleId>
      <ArticleId IdType="doi">10.1248/cpb.37.819</ArticleId>
    </ArticleIdList>
  </PubmedData>
</PubmedArticle>
</PubmedArticleSet>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestParseArticles(t *testing.T) {
	articles, err := ParseArticles([]byte(efetchXML))
	if err != nil {
		t.Fatalf("ParseArticles() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	a := articles[0]

	checks := []struct {
		field, got, want string
	}{
		{"PMID", a.PMID, "2758924"},
		{"Title", a.Title, "Constituents of Clausena excavata"},
		{"Journal", a.Journal, "Chemical & pharmaceutical bulletin"},
		{"JournalAbbrev", a.JournalAbbrev, "Chem Pharm Bull (Tokyo)"},
		{"Volume", a.Volume, "37"},
		{"Issue", a.Issue, "3"},
		{"Pages", a.Pages, "819-23"},
		{"Year", a.Year, "1989"},
		{"DOI", a.DOI, "10.1248/cpb.37.819"},
		{"Abstract", a.Abstract, "First part.\nSecond part."},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	wantAuthors := []string{"Ito C", "Lustig PA", "COCONUT Consortium"}
	if strings.Join(a.Authors, "|") != strings.Join(wantAuthors, "|") {
		t.Errorf("Authors = %v, want %v", a.Authors, wantAuthors)
	}
}

func TestParseArticles_ELocationDOI(t *testing.T) {
	xml := `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>1</PMID><Article>
		<Journal><JournalIssue><PubDate><Year>2020</Year></PubDate></JournalIssue></Journal>
		<ArticleTitle>T</ArticleTitle>
		<ELocationID EIdType="pii">e1</ELocationID>
		<ELocationID EIdType="doi">10.1000/xyz</ELocationID>
	</Article></MedlineCitation></PubmedArticle></PubmedArticleSet>`

	articles, err := ParseArticles([]byte(xml))
	if err != nil {
		t.Fatalf("ParseArticles() error = %v", err)
	}
	if len(articles) != 1 || articles[0].DOI != "10.1000/xyz" || articles[0].Year != "2020" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestParseArticles_Invalid(t *testing.T) {
	_, err := ParseArticles([]byte("<PubmedArticleSet><unclosed"))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestFetchByPMID(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/efetch.fcgi" {
			t.Errorf("path = %q, want /efetch.fcgi", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(efetchXML))
	})

	a, err := c.FetchByPMID(context.Background(), "2758924")
	if err != nil {
		t.Fatalf("FetchByPMID() error = %v", err)
	}
	if a.PMID != "2758924" {
		t.Errorf("PMID = %q", a.PMID)
	}
	for _, want := range []string{"db=pubmed", "id=2758924", "retmode=xml", "tool=citenorm"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestFetchByPMID_InvalidID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid PMID")
	})
	if _, err := c.FetchByPMID(context.Background(), "25a"); !IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestFetchByDOI(t *testing.T) {
	var gotTerm, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			gotTerm = r.URL.Query().Get("term")
			gotKey = r.URL.Query().Get("api_key")
			w.Write([]byte(`{"esearchresult": {"count": "1", "idlist": ["2758924"]}}`))
		case "/efetch.fcgi":
			w.Write([]byte(efetchXML))
		default:
			http.NotFound(w, r)
		}
	})
	WithAPIKey("secret")(c)

	a, err := c.FetchByDOI(context.Background(), "10.1248/CPB.37.819")
	if err != nil {
		t.Fatalf("FetchByDOI() error = %v", err)
	}
	if a.PMID != "2758924" {
		t.Errorf("PMID = %q", a.PMID)
	}
	if gotTerm != "10.1248/CPB.37.819[doi]" {
		t.Errorf("term = %q", gotTerm)
	}
	if gotKey != "secret" {
		t.Errorf("api_key = %q, want secret", gotKey)
	}
}

func TestFetchByDOI_NoHits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult": {"count": "0", "idlist": []}}`))
	})
	if _, err := c.FetchByDOI(context.Background(), "10.1000/none"); !IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestFetchByDOI_Mismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/esearch.fcgi" {
			w.Write([]byte(`{"esearchresult": {"count": "1", "idlist": ["2758924"]}}`))
			return
		}
		w.Write([]byte(efetchXML))
	})
	if _, err := c.FetchByDOI(context.Background(), "10.1000/other"); !IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestTransientErrors(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := c.FetchByPMID(context.Background(), "1")
		if !IsTransient(err) {
			t.Errorf("status %d: error = %v, want transient", status, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != status {
			t.Errorf("status %d: error = %v, want *APIError", status, err)
		}
	}
}
