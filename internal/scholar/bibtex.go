package scholar

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	entryStartRegex = regexp.MustCompile(`^\s*@\w+\{([^,]*),`)
	fieldRegex      = regexp.MustCompile(`^\s*(\w+)\s*=\s*[\{"](.*?)[\}"]\s*,?\s*$`)
)

// parseBibTeX reads the fields of the first entry of a BibTeX export. Google
// Scholar writes one field per line, which is all this parser supports.
// Field names are lower-cased and year is stored under BibYear.
func parseBibTeX(data string) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(data))
	inEntry := false

	for scanner.Scan() {
		line := scanner.Text()

		if entryStartRegex.MatchString(line) {
			if inEntry {
				break
			}
			inEntry = true
			continue
		}
		if !inEntry {
			continue
		}

		m := fieldRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToLower(m[1])
		if key == "year" {
			key = BibYear
		}
		fields[key] = unbrace(m[2])
	}
	return fields
}

// unbrace strips the protective braces BibTeX uses for casing ("{DNA}").
func unbrace(s string) string {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
