// Package coconut reads the reference export of the COCONUT natural-product
// database: a CSV file with coconut_id and citationDOI columns, where each
// citationDOI cell holds a Python list literal of reference strings.
package coconut

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names of the export.
const (
	ColumnID         = "coconut_id"
	ColumnReferences = "citationDOI"
)

// MissingMarker stands for an unknown reference.
const MissingMarker = "NA"

// Record is one natural product and its reference strings.
type Record struct {
	CoconutID  string   `json:"coconut_id"`
	References []string `json:"references"`
}

// ReadFile reads the export at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening COCONUT export: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses an export. Columns are located by header name, so extra
// columns (such as a pandas index) are ignored.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idCol, refCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case ColumnID:
			idCol = i
		case ColumnReferences:
			refCol = i
		}
	}
	if idCol < 0 || refCol < 0 {
		return nil, fmt.Errorf("missing %s or %s column in header %v", ColumnID, ColumnReferences, header)
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if idCol >= len(row) || refCol >= len(row) {
			continue
		}

		refs, err := ParseList(row[refCol])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", line, row[idCol], err)
		}
		records = append(records, Record{CoconutID: strings.TrimSpace(row[idCol]), References: refs})
	}
	return records, nil
}

// UniqueReferences returns every distinct reference string in first-seen
// order, without the NA marker.
func UniqueReferences(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		for _, ref := range rec.References {
			if ref == MissingMarker || ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}
