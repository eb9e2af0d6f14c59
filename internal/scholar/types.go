// Package scholar scrapes Google Scholar search results and their BibTeX
// exports. Google offers no API; the HTML structure parsed here is the
// one served to non-JavaScript clients.
package scholar

// Bib keys populated from the result page and the BibTeX export.
const (
	BibTitle     = "title"
	BibAuthor    = "author" // " and "-joined
	BibYear      = "pub_year"
	BibVenue     = "venue"
	BibJournal   = "journal"
	BibVolume    = "volume"
	BibNumber    = "number"
	BibPages     = "pages"
	BibPublisher = "publisher"
	BibDOI       = "doi"
)

// Publication is one Google Scholar search result.
type Publication struct {
	ClusterID string            `json:"cluster_id,omitempty"`
	URL       string            `json:"url,omitempty"`
	Bib       map[string]string `json:"bib"`
	Filled    bool              `json:"filled"`
}
