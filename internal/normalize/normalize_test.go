package normalize

import (
	"strings"
	"testing"
	"unicode"
)

func TestNameSpelling(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MUSTERMANN, MAX-MORITZ", "Mustermann, Max-Moritz"},
		{"mustermann, max-moritz", "Mustermann, Max-Moritz"},
		{"Ito", "Ito"},
		{"ITO, CHIHIRO", "Ito, Chihiro"},
		{"o'brien", "O'brien"},
		{"MÜLLER", "Müller"},
		{"", ""},
		{" leading", " Leading"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NameSpelling(tt.input); got != tt.want {
				t.Errorf("NameSpelling(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNameSpelling_Idempotent(t *testing.T) {
	inputs := []string{
		"MUSTERMANN, MAX-MORITZ",
		"van der WAALS",
		"jean-PAUL  sartre",
		"ÉMILE ZOLA",
		"a-b-c d e",
		"123 abc",
		"--x",
		"",
	}
	for _, in := range inputs {
		once := NameSpelling(in)
		twice := NameSpelling(once)
		if once != twice {
			t.Errorf("NameSpelling not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestInitial(t *testing.T) {
	if got := Initial("Chihiro"); got != "C" {
		t.Errorf("Initial(Chihiro) = %q, want C", got)
	}
	if got := Initial("Émile"); got != "É" {
		t.Errorf("Initial(Émile) = %q, want É", got)
	}
	if got := Initial(""); got != "" {
		t.Errorf("Initial(\"\") = %q, want empty", got)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name              string
		input             string
		onlyIfHomogeneous bool
		want              string
	}{
		{
			name:              "all upper",
			input:             "CONSTITUENTS OF CLAUSENA EXCAVATA",
			onlyIfHomogeneous: true,
			want:              "Constituents OF Clausena Excavata",
		},
		{
			name:              "all lower",
			input:             "the alkaloids from a rutaceous plant",
			onlyIfHomogeneous: true,
			want:              "the Alkaloids from a Rutaceous Plant",
		},
		{
			name:              "mixed case untouched",
			input:             "Constituents of CLAUSENA excavata",
			onlyIfHomogeneous: true,
			want:              "Constituents of CLAUSENA excavata",
		},
		{
			name:              "journal always cased",
			input:             "Chemical and pharmaceutical BULLETIN",
			onlyIfHomogeneous: false,
			want:              "Chemical and Pharmaceutical Bulletin",
		},
		{
			name:              "upper stop words kept",
			input:             "A STUDY OF THE ROOTS",
			onlyIfHomogeneous: true,
			want:              "A Study OF THE Roots",
		},
		{
			name:              "extra spaces collapsed",
			input:             "JOURNAL  OF   NATURAL PRODUCTS",
			onlyIfHomogeneous: false,
			want:              "Journal OF Natural Products",
		},
		{
			name:              "no cased letters untouched",
			input:             "1989 2",
			onlyIfHomogeneous: true,
			want:              "1989 2",
		},
		{
			name:              "empty",
			input:             "",
			onlyIfHomogeneous: false,
			want:              "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.input, tt.onlyIfHomogeneous); got != tt.want {
				t.Errorf("Title(%q, %v) = %q, want %q", tt.input, tt.onlyIfHomogeneous, got, tt.want)
			}
		})
	}
}

func TestTitle_HomogeneousWordsCapitalizedOnce(t *testing.T) {
	inputs := []string{
		"NEW COUMARINS FROM THE ROOTS OF ANGELICA",
		"new coumarins from the roots of angelica",
	}
	for _, in := range inputs {
		out := Title(in, true)
		for _, word := range strings.Fields(out) {
			runes := []rune(word)
			if stopWords[strings.ToLower(word)] {
				continue
			}
			if !unicode.IsUpper(runes[0]) {
				t.Errorf("Title(%q): word %q should start upper-case", in, word)
			}
			for _, r := range runes[1:] {
				if unicode.IsUpper(r) {
					t.Errorf("Title(%q): word %q should have lower-case rest", in, word)
				}
			}
		}
	}
}
