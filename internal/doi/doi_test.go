package doi

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare doi", "10.1248/cpb.37.819", "10.1248/cpb.37.819", true},
		{"doi with prefix text", "Ito et al., doi: 10.1248/cpb.37.819 (1989)", "10.1248/cpb.37.819", true},
		{"doi url", "https://doi.org/10.1021/np50064a010", "10.1021/np50064a010", true},
		{"trailing period", "See 10.1021/np50064a010.", "10.1021/np50064a010", true},
		{"stops at quote", `href="10.1000/xyz123"`, "10.1000/xyz123", true},
		{"stops at ampersand", "10.1000/abc&x=1", "10.1000/abc", true},
		{"sub-coded registrant", "10.1000.10/abc", "10.1000.10/abc", true},
		{"balanced parentheses kept", "10.1016/0006-2952(89)90001-2", "10.1016/0006-2952(89)90001-2", true},
		{"unbalanced parenthesis trimmed", "(see 10.1016/j.phytochem.2004.01.001)", "10.1016/j.phytochem.2004.01.001", true},
		{"first of two", "10.1111/aaaa 10.2222/bbbb", "10.1111/aaaa", true},
		{"short registrant", "10.123/abc", "", false},
		{"no suffix", "10.1234/", "", false},
		{"plain text", "Ito,Chem. Pharm. Bull.,37,(1989),819", "", false},
		{"pmid", "2758489", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtract_IndependentOfSurroundingText(t *testing.T) {
	const want = "10.1248/cpb.37.819"
	surroundings := [][2]string{
		{"", ""},
		{"prefix ", ""},
		{"", " suffix"},
		{"Chem Pharm Bull 1989 ", " pp. 819-823"},
		{"<a>", "</a>"},
		{"'", "'"},
	}
	for _, s := range surroundings {
		got, ok := Extract(s[0] + want + s[1])
		if !ok || got != want {
			t.Errorf("Extract(%q) = %q, %v; want %q", s[0]+want+s[1], got, ok, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1248/CPB.37.819", "10.1248/cpb.37.819"},
		{"https://doi.org/10.1248/cpb.37.819", "10.1248/cpb.37.819"},
		{"DOI: 10.1248/cpb.37.819", "10.1248/cpb.37.819"},
		{"  http://dx.doi.org/10.1/x  ", "10.1/x"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("10.1248/CPB.37.819", "https://doi.org/10.1248/cpb.37.819") {
		t.Error("Equal() should ignore case and URL prefix")
	}
	if Equal("", "") {
		t.Error("Equal() should be false for empty DOIs")
	}
}

func TestIsPMID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"25", true},
		{"2758489", true},
		{"", false},
		{"25a", false},
		{" 25", false},
		{"10.1248/cpb.37.819", false},
	}

	for _, tt := range tests {
		if got := IsPMID(tt.input); got != tt.want {
			t.Errorf("IsPMID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
