// Package crossref provides a client for the Crossref REST API.
package crossref

import (
	"encoding/json"
	"fmt"
)

// Work is a single Crossref work record ("message" of /works/{doi}, or an
// item of a /works search).
type Work struct {
	DOI            string        `json:"DOI"`
	Type           string        `json:"type"`
	Title          StringList    `json:"title"`
	ContainerTitle StringList    `json:"container-title"`
	Abstract       string        `json:"abstract,omitempty"`
	Volume         StringList    `json:"volume,omitempty"`
	Issue          StringList    `json:"issue,omitempty"`
	Page           string        `json:"page,omitempty"`
	Author         []Contributor `json:"author,omitempty"`
	Issued         DateParts     `json:"issued"`
	Score          float64       `json:"score,omitempty"`
}

// Contributor is a Crossref author. Organisations carry only Name.
type Contributor struct {
	Given    string `json:"given,omitempty"`
	Family   string `json:"family,omitempty"`
	Name     string `json:"name,omitempty"`
	Sequence string `json:"sequence,omitempty"`
}

// IsOrganization reports whether the contributor is an organisation rather than a person.
func (c Contributor) IsOrganization() bool {
	return c.Given == "" && c.Family == ""
}

// DateParts is Crossref's partial date representation, e.g. {"date-parts": [[1989, 3]]}.
// Unknown components are encoded as null.
type DateParts struct {
	Parts [][]*int `json:"date-parts"`
}

// Year returns the first component of the first date, or 0 if unknown.
func (d DateParts) Year() int {
	if len(d.Parts) == 0 || len(d.Parts[0]) == 0 || d.Parts[0][0] == nil {
		return 0
	}
	return *d.Parts[0][0]
}

// StringList unmarshals from either a JSON string or an array of strings.
// Crossref returns most textual fields as arrays, but not consistently.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*s = nil
		return nil
	}

	// Try array first
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	// Try single string
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}

	// Try number (volume and issue are sometimes numeric)
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*s = StringList{n.String()}
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into StringList", string(data))
}

// First returns the first element, or "" if the list is empty.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// workResponse is the envelope of GET /works/{doi}.
type workResponse struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

// searchResponse is the envelope of GET /works?query...
type searchResponse struct {
	Status  string `json:"status"`
	Message struct {
		TotalResults int    `json:"total-results"`
		Items        []Work `json:"items"`
	} `json:"message"`
}
