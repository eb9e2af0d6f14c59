package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/OBrink/citation-normalisation/internal/reference"
)

func TestAccept(t *testing.T) {
	keyword := func(authors []string, year int) *reference.Reference {
		return &reference.Reference{
			Title:      "T",
			Authors:    authors,
			Year:       year,
			Provenance: reference.Provenance{QueryKind: reference.QueryKeyword},
		}
	}

	tests := []struct {
		name  string
		ref   *reference.Reference
		query string
		want  bool
	}{
		{"matching surname and year", keyword([]string{"Ito, C."}, 1989), "Ito 1989 pharm bull", true},
		{"case insensitive surname", keyword([]string{"Ito, C."}, 1989), "ITO, Chem. Pharm. Bull., 1989", true},
		{"unrelated query", keyword([]string{"Ito, C."}, 1989), "Smith 2001 unrelated", false},
		{"year missing from query", keyword([]string{"Ito, C."}, 1989), "Ito pharm bull", false},
		{"pubmed style surname", keyword([]string{"Lustig., P., A."}, 2010), "lustig 2010", true},
		{"no year", keyword([]string{"Ito, C."}, 0), "Ito 1989", false},
		{"doi bypasses", &reference.Reference{Provenance: reference.Provenance{QueryKind: reference.QueryDOI}}, "x", true},
		{"pmid bypasses", &reference.Reference{Provenance: reference.Provenance{QueryKind: reference.QueryPMID}}, "x", true},
		{"nil", nil, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accept(tt.ref, tt.query); got != tt.want {
				t.Errorf("Accept() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")
	isTransient := func(err error) bool { return errors.Is(err, errTransient) }

	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{"success first time", nil, 1, nil},
		{"success after transient", []error{errTransient, errTransient}, 3, nil},
		{"budget exhausted", []error{errTransient, errTransient, errTransient, errTransient, errTransient}, 5, errTransient},
		{"permanent stops", []error{errPermanent}, 1, errPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			v, err := Retry(context.Background(), 5, isTransient, func(context.Context) (string, error) {
				calls++
				if calls <= len(tt.failures) {
					return "", tt.failures[calls-1]
				}
				return "ok", nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && v != "ok" {
				t.Errorf("value = %q, want ok", v)
			}
		})
	}
}
