package refmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/reference"
)

const itoQuery = "Ito,Chem. Pharm. Bull.,37,(1989),819"

func itoRef() *reference.Reference {
	return &reference.Reference{
		Title:   "Constituents of Clausena excavata",
		Authors: []string{"Ito, C."},
		Year:    1989,
		Journal: "Chemical and Pharmaceutical Bulletin",
		Volume:  "37",
		Pages:   "819",
		DOI:     "10.1248/cpb.37.819",
	}
}

func TestFromReference(t *testing.T) {
	e := FromReference(itoRef())
	if e.Reference != "Ito, C., Chemical and Pharmaceutical Bulletin, 1989, 37, 819" {
		t.Errorf("Reference = %q", e.Reference)
	}
	if e.DOI == nil || *e.DOI != "10.1248/cpb.37.819" {
		t.Errorf("DOI = %v", e.DOI)
	}
	if e.PMID != nil {
		t.Errorf("PMID = %v, want nil", *e.PMID)
	}
}

func TestBuildLaterPassOverrides(t *testing.T) {
	first := []checkpoint.Entry{
		{Query: itoQuery, Ref: &reference.Reference{Title: "Wrong", Authors: []string{"Smith, J."}, Year: 2001}},
		{Query: "25", Ref: nil},
	}
	second := []checkpoint.Entry{
		{Query: itoQuery, Ref: itoRef()},
		{Query: "other", Ref: nil},
	}

	m := Build(first, second)
	if len(m) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(m), m.Keys())
	}
	if !strings.HasPrefix(m[itoQuery].Reference, "Ito, C.") {
		t.Errorf("entry = %+v, want second pass", m[itoQuery])
	}
}

func TestReplacement(t *testing.T) {
	pmid := "2758924"
	m := Build([]checkpoint.Entry{{Query: itoQuery, Ref: itoRef()}})
	e := m[itoQuery]
	e.PMID = &pmid
	m[itoQuery] = e

	want := "Ito, C., Chemical and Pharmaceutical Bulletin, 1989, 37, 819; DOI: 10.1248/cpb.37.819; PMID: 2758924"
	if got := m.Replacement(itoQuery); got != want {
		t.Errorf("Replacement() = %q, want %q", got, want)
	}
	if got := m.Replacement("unmapped"); got != "unmapped" {
		t.Errorf("Replacement(unmapped) = %q", got)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	m := Build([]checkpoint.Entry{{Query: itoQuery, Ref: itoRef()}})
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"PMID": null`) {
		t.Errorf("missing PMID should be encoded as null:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Replacement(itoQuery) != m.Replacement(itoQuery) {
		t.Errorf("round trip changed entry: %+v", loaded[itoQuery])
	}
}
