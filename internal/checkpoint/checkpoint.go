// Package checkpoint implements the append-only results log that makes
// batch runs resumable. Each line is
//
//	<query>\t<JSON reference | NONE>
//
// keyed by the query. Lines are only ever appended; a key that occurs more
// than once keeps its first value.
package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/OBrink/citation-normalisation/internal/reference"
)

// NoneMarker is written in place of a record for failed resolutions.
const NoneMarker = "NONE"

// MaxLineCapacity is the maximum buffer size for reading a line (1MB).
const MaxLineCapacity = 1024 * 1024

// Entry is one line of a checkpoint file. Ref is nil for failures.
type Entry struct {
	Query string
	Ref   *reference.Reference
}

// Key sanitizes a query for use as a line key. Tabs and line breaks would
// corrupt the file, so they are replaced by spaces.
func Key(query string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, query)
}

// Log is an open checkpoint file. It is safe for concurrent use; every
// entry is written as a single complete line.
type Log struct {
	mu   sync.Mutex
	f    *os.File
	path string
	done map[string]struct{}
}

// Open reads the keys already present in path and opens it for appending,
// creating it if needed.
func Open(path string) (*Log, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint for append: %w", err)
	}

	done := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		done[e.Query] = struct{}{}
	}
	return &Log{f: f, path: path, done: done}, nil
}

// Path returns the file path of the log.
func (l *Log) Path() string {
	return l.path
}

// Done reports whether query already has an entry.
func (l *Log) Done(query string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[Key(query)]
	return ok
}

// Len returns the number of distinct keys in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// Append writes the result for query. A nil ref records a failure.
func (l *Log) Append(query string, ref *reference.Reference) error {
	line, err := formatLine(query, ref)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("writing checkpoint line: %w", err)
	}
	l.done[Key(query)] = struct{}{}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

func formatLine(query string, ref *reference.Reference) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Key(query))
	buf.WriteByte('\t')
	if ref == nil {
		buf.WriteString(NoneMarker)
	} else {
		data, err := json.Marshal(ref)
		if err != nil {
			return nil, fmt.Errorf("encoding reference: %w", err)
		}
		buf.Write(data)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ReadAll reads the entries of a checkpoint file in order, keeping the
// first entry of each key. A missing file yields no entries. A trailing
// line without newline, left by an interrupted write, is ignored.
func ReadAll(path string) ([]Entry, error) {
	return read(path, true)
}

// ReadEvery is ReadAll without de-duplication, for logs such as the
// rejected-record log that hold several records per query.
func ReadEvery(path string) ([]Entry, error) {
	return read(path, false)
}

func read(path string, firstOnly bool) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	if i := bytes.LastIndexByte(data, '\n'); i < len(data)-1 {
		data = data[:i+1]
	}

	var entries []Entry
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	buf := make([]byte, MaxLineCapacity)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		query, value, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("parsing line %d: missing tab separator", lineNum)
		}
		if firstOnly && seen[query] {
			continue
		}
		seen[query] = true

		entry := Entry{Query: query}
		if value != NoneMarker {
			var ref reference.Reference
			if err := json.Unmarshal([]byte(value), &ref); err != nil {
				return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
			}
			entry.Ref = &ref
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	return entries, nil
}
