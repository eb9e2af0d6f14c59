// Package refmap builds the mapping from original reference strings to
// their normalized citations, the input of the database update.
package refmap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/citation"
	"github.com/OBrink/citation-normalisation/internal/reference"
)

// Entry is the normalized form of one original reference string.
type Entry struct {
	Reference string  `json:"reference"`
	DOI       *string `json:"DOI"`
	PMID      *string `json:"PMID"`
}

// Map maps original reference strings to their normalized entries.
type Map map[string]Entry

// FromReference builds the entry for ref. The DOI is kept out of the
// citation text since the update step appends it itself.
func FromReference(ref *reference.Reference) Entry {
	plain := *ref
	plain.DOI = ""

	e := Entry{Reference: citation.Assemble(&plain)}
	if ref.DOI != "" {
		d := ref.DOI
		e.DOI = &d
	}
	if ref.PMID != "" {
		p := ref.PMID
		e.PMID = &p
	}
	return e
}

// Build merges checkpoint passes into a map. Later passes override earlier
// ones for queries they resolved; failures never override.
func Build(passes ...[]checkpoint.Entry) Map {
	m := make(Map)
	for _, pass := range passes {
		for _, e := range pass {
			if e.Ref == nil {
				continue
			}
			m[e.Query] = FromReference(e.Ref)
		}
	}
	return m
}

// Keys returns the original reference strings in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Replacement returns the text that replaces original in a reference list:
// the normalized citation followed by "; DOI: <doi>" and "; PMID: <pmid>"
// when known. Unmapped references are returned unchanged.
func (m Map) Replacement(original string) string {
	e, ok := m[original]
	if !ok {
		return original
	}
	out := e.Reference
	if e.DOI != nil && *e.DOI != "" {
		out += "; DOI: " + *e.DOI
	}
	if e.PMID != nil && *e.PMID != "" {
		out += "; PMID: " + *e.PMID
	}
	return out
}

// Load reads a map from a JSON file.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference map: %w", err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing reference map: %w", err)
	}
	return m, nil
}

// Save writes the map as indented JSON.
func (m Map) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding reference map: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing reference map: %w", err)
	}
	return nil
}
