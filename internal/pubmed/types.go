// Package pubmed provides a client for NCBI E-utilities (PubMed).
package pubmed

// Article is a PubMed article with the fields the normalizer uses.
// Authors are in PubMed's short form, "Lustig PA".
type Article struct {
	PMID          string   `json:"pmid"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Journal       string   `json:"journal"`
	JournalAbbrev string   `json:"journal_abbrev,omitempty"`
	Volume        string   `json:"volume,omitempty"`
	Issue         string   `json:"issue,omitempty"`
	Pages         string   `json:"pages,omitempty"`
	Year          string   `json:"year"`
	DOI           string   `json:"doi,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
}

// esearchResponse is the JSON envelope of esearch.fcgi.
type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}
