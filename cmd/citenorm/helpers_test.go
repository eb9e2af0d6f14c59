package main

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"crossref-mailto": "crossref_mailto",
		"NCBI-API-KEY":    "ncbi_api_key",
		"workers":         "workers",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "cfg.tsv", DefaultCheckpoint); got != "cfg.tsv" {
		t.Errorf("firstNonEmpty() = %q, want cfg.tsv", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}

func TestFirstPositive(t *testing.T) {
	if got := firstPositive(0, 8); got != 8 {
		t.Errorf("firstPositive(0, 8) = %d, want 8", got)
	}
	if got := firstPositive(3, 8); got != 3 {
		t.Errorf("firstPositive(3, 8) = %d, want 3", got)
	}
	if got := firstPositive(0, 0); got != 0 {
		t.Errorf("firstPositive(0, 0) = %d, want 0", got)
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	authors := []string{"Ito, C.", "Furukawa, H.", "Ishii, H."}
	if got, want := formatAuthorsShort(authors, 2), "Ito, C.; Furukawa, H.; et al."; got != want {
		t.Errorf("formatAuthorsShort() = %q, want %q", got, want)
	}
	if got, want := formatAuthorsShort(authors, 5), "Ito, C.; Furukawa, H.; Ishii, H."; got != want {
		t.Errorf("formatAuthorsShort() = %q, want %q", got, want)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("Constituents of Clausena excavata", 15); got != "Constituents..." {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("short", 15); got != "short" {
		t.Errorf("truncateString() = %q, want short", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"resolve", "doi", "batch", "recheck", "export-map", "store", "config"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, name := range []string{"import", "apply", "list"} {
		cmd, _, err := rootCmd.Find([]string{"store", name})
		if err != nil || cmd.Name() != name {
			t.Errorf("store subcommand %q not registered", name)
		}
	}
}
