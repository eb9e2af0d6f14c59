package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const workJSON = `{
	"status": "ok",
	"message": {
		"DOI": "10.1248/cpb.37.819",
		"type": "journal-article",
		"title": ["Constituents of Clausena excavata"],
		"container-title": ["Chemical and Pharmaceutical Bulletin"],
		"volume": "37",
		"issue": "3",
		"page": "819-823",
		"author": [
			{"given": "Chihiro", "family": "ITO", "sequence": "first"},
			{"given": "Hiroshi", "family": "Furukawa", "sequence": "additional"}
		],
		"issued": {"date-parts": [[1989]]}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithRateLimit(1000), WithMailto("test@example.org"))
}

func TestByDOI(t *testing.T) {
	var gotPath, gotMailto string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMailto = r.URL.Query().Get("mailto")
		w.Write([]byte(workJSON))
	})

	work, err := c.ByDOI(context.Background(), "10.1248/cpb.37.819")
	if err != nil {
		t.Fatalf("ByDOI() error = %v", err)
	}
	if gotPath != "/works/10.1248/cpb.37.819" {
		t.Errorf("path = %q, want /works/10.1248/cpb.37.819", gotPath)
	}
	if gotMailto != "test@example.org" {
		t.Errorf("mailto = %q, want test@example.org", gotMailto)
	}
	if work.Title.First() != "Constituents of Clausena excavata" {
		t.Errorf("Title = %v", work.Title)
	}
	if work.Volume.First() != "37" || work.Issue.First() != "3" {
		t.Errorf("Volume/Issue = %v/%v, want 37/3", work.Volume, work.Issue)
	}
	if work.Issued.Year() != 1989 {
		t.Errorf("Year() = %d, want 1989", work.Issued.Year())
	}
	if len(work.Author) != 2 || work.Author[0].Family != "ITO" {
		t.Errorf("Author = %+v", work.Author)
	}
}

func TestByDOI_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Resource not found.", http.StatusNotFound)
	})

	_, err := c.ByDOI(context.Background(), "10.9999/missing")
	if !IsNotFound(err) {
		t.Errorf("ByDOI() error = %v, want not found", err)
	}
	if IsTransient(err) {
		t.Error("not found should not be transient")
	}
}

func TestByDOI_Transient(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := c.ByDOI(context.Background(), "10.1248/cpb.37.819")
		if !IsTransient(err) {
			t.Errorf("status %d: error = %v, want transient", status, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != status {
			t.Errorf("status %d: want *APIError with matching status, got %v", status, err)
		}
	}
}

func TestByDOI_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := c.ByDOI(context.Background(), "10.1248/cpb.37.819")
	if !IsTransient(err) {
		t.Errorf("ByDOI() error = %v, want transient", err)
	}
}

func TestQuery(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		var work workResponse
		json.Unmarshal([]byte(workJSON), &work)
		resp := map[string]any{
			"status":  "ok",
			"message": map[string]any{"total-results": 1, "items": []Work{work.Message}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	works, err := c.Query(context.Background(), "Ito,Chem. Pharm. Bull.,37,(1989),819", 0)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(works) != 1 || works[0].DOI != "10.1248/cpb.37.819" {
		t.Fatalf("Query() = %+v", works)
	}
	if got := query["query.bibliographic"]; len(got) != 1 || got[0] != "Ito,Chem. Pharm. Bull.,37,(1989),819" {
		t.Errorf("query.bibliographic = %v", got)
	}
	if query["sort"][0] != "relevance" || query["rows"][0] != "1" {
		t.Errorf("sort/rows = %v/%v, want relevance/1", query["sort"], query["rows"])
	}
}

func TestQuery_NoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","message":{"total-results":0,"items":[]}}`))
	})

	_, err := c.Query(context.Background(), "nothing", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Query() error = %v, want ErrNotFound", err)
	}
}

func TestQuery_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.Query(context.Background(), "x", 1)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Query() error = %v, want ErrInvalidResponse", err)
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"array", `["a","b"]`, "a"},
		{"string", `"37"`, "37"},
		{"number", `37`, "37"},
		{"null", `null`, ""},
		{"empty array", `[]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringList
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := s.First(); got != tt.want {
				t.Errorf("First() = %q, want %q", got, tt.want)
			}
		})
	}

	var s StringList
	if err := json.Unmarshal([]byte(`{"k":"v"}`), &s); err == nil {
		t.Error("UnmarshalJSON() expected error for object")
	}
}

func TestDatePartsYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{`{"date-parts": [[1989, 3, 1]]}`, 1989},
		{`{"date-parts": [[null]]}`, 0},
		{`{"date-parts": []}`, 0},
		{`{}`, 0},
	}

	for _, tt := range tests {
		var d DateParts
		if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
		}
		if got := d.Year(); got != tt.want {
			t.Errorf("Year() for %s = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestContributorIsOrganization(t *testing.T) {
	if !(Contributor{Name: "WHO"}).IsOrganization() {
		t.Error("name-only contributor should be an organization")
	}
	if (Contributor{Given: "C", Family: "Ito"}).IsOrganization() {
		t.Error("personal contributor should not be an organization")
	}
}

func TestPlainAbstract(t *testing.T) {
	jats := `<jats:title>Abstract</jats:title><jats:p>Two new <jats:italic>carbazole</jats:italic> alkaloids were isolated.</jats:p>`
	got := PlainAbstract(jats)
	if strings.Contains(got, "jats") || strings.Contains(got, "<") {
		t.Errorf("PlainAbstract() left markup: %q", got)
	}
	if strings.Contains(got, "Abstract") {
		t.Errorf("PlainAbstract() kept section title: %q", got)
	}
	if !strings.Contains(got, "carbazole") || !strings.Contains(got, "alkaloids were isolated.") {
		t.Errorf("PlainAbstract() lost text: %q", got)
	}
	if PlainAbstract("  ") != "" {
		t.Error("PlainAbstract() of blank should be empty")
	}
}
