package scholar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Google Scholar base URL.
	BaseURL = "https://scholar.google.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default request rate (requests per second). Scholar
	// blocks clients that go much faster.
	RateLimit = 0.2

	userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

var yearPattern = regexp.MustCompile(`\b(1[5-9]|20)\d{2}\b`)

// Client is a rate-limited Google Scholar scraper. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new Google Scholar client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search starts a publication search and fetches the first result page.
func (c *Client) Search(ctx context.Context, keyword string) (*Iterator, error) {
	it := &Iterator{client: c, query: keyword, more: true}
	if err := it.fetchPage(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

// First returns the top search result for keyword, filled with its BibTeX
// fields when an export is available.
func (c *Client) First(ctx context.Context, keyword string) (*Publication, error) {
	it, err := c.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	pub, err := it.Next(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Fill(ctx, pub); err != nil && !errors.Is(err, ErrNoBibTeX) {
		return nil, err
	}
	return pub, nil
}

// Fill completes pub.Bib with the fields of the publication's BibTeX export.
// Publications without a cluster id cannot be filled and are left as is.
func (c *Client) Fill(ctx context.Context, pub *Publication) error {
	if pub.Filled || pub.ClusterID == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", "info:"+pub.ClusterID+":scholar.google.com/")
	params.Set("output", "cite")
	params.Set("scirp", "0")
	params.Set("hl", "en")

	body, err := c.get(ctx, c.baseURL+"/scholar?"+params.Encode())
	if err != nil {
		return fmt.Errorf("fetching cite popup: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing cite popup: %w", err)
	}

	var href string
	doc.Find("a.gs_citi").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.Text()), "BibTeX") {
			href, _ = s.Attr("href")
			return false
		}
		return true
	})
	if href == "" {
		return ErrNoBibTeX
	}

	bibURL, err := c.resolve(href)
	if err != nil {
		return fmt.Errorf("resolving BibTeX link: %w", err)
	}
	bib, err := c.get(ctx, bibURL)
	if err != nil {
		return fmt.Errorf("fetching BibTeX: %w", err)
	}

	if pub.Bib == nil {
		pub.Bib = make(map[string]string)
	}
	for k, v := range parseBibTeX(string(bib)) {
		if v != "" {
			pub.Bib[k] = v
		}
	}
	pub.Filled = true
	return nil
}

// searchPage fetches one page of results starting at offset start and
// reports whether Scholar offers a next page.
func (c *Client) searchPage(ctx context.Context, query string, start int) ([]Publication, bool, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en")
	if start > 0 {
		params.Set("start", fmt.Sprint(start))
	}

	body, err := c.get(ctx, c.baseURL+"/scholar?"+params.Encode())
	if err != nil {
		return nil, false, err
	}
	return parseResults(body)
}

// parseResults extracts the publications of a Scholar result page.
func parseResults(body []byte) ([]Publication, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("parsing result page: %w", err)
	}

	var pubs []Publication
	doc.Find("div.gs_r").Each(func(_ int, s *goquery.Selection) {
		ri := s.Find("div.gs_ri")
		if ri.Length() == 0 {
			return
		}

		heading := ri.Find("h3.gs_rt").First()
		heading.Find("span.gs_ctc, span.gs_ctu").Remove()
		title := cleanText(heading.Text())
		if title == "" {
			return
		}

		pub := Publication{Bib: map[string]string{BibTitle: title}}
		pub.ClusterID, _ = s.Attr("data-cid")
		pub.URL, _ = heading.Find("a").Attr("href")

		authors, venue, year := splitByline(ri.Find("div.gs_a").First().Text())
		if authors != "" {
			pub.Bib[BibAuthor] = authors
		}
		if venue != "" {
			pub.Bib[BibVenue] = venue
		}
		if year != "" {
			pub.Bib[BibYear] = year
		}
		pubs = append(pubs, pub)
	})

	hasNext := doc.Find(".gs_ico_nav_next").Length() > 0
	return pubs, hasNext, nil
}

// splitByline splits the green result byline, "C Ito, H Furukawa - Chemical
// and Pharmaceutical Bulletin, 1989 - jstage.jst.go.jp", into an " and "-joined
// author list in "Surname, Initials" form, the venue and the year.
func splitByline(line string) (authors, venue, year string) {
	line = cleanText(line)
	parts := strings.Split(line, " - ")

	var names []string
	for _, name := range strings.Split(parts[0], ",") {
		name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "…"))
		if name == "" {
			continue
		}
		fields := strings.Fields(name)
		if len(fields) > 1 {
			name = fields[len(fields)-1] + ", " + strings.Join(fields[:len(fields)-1], " ")
		}
		names = append(names, name)
	}
	authors = strings.Join(names, " and ")

	if len(parts) > 1 {
		year = yearPattern.FindString(parts[1])
		venue = parts[1]
		if year != "" {
			venue = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.Replace(venue, year, "", 1)), ","))
		}
		if venue == year {
			venue = ""
		}
	}
	return authors, venue, year
}

// get performs a rate-limited GET, mapping Scholar's refusal pages to
// ErrTooManyTries.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(resp.Request.URL.Path, "/sorry/") {
		return nil, ErrTooManyTries
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}
	if bytes.Contains(body, []byte("gs_captcha")) || bytes.Contains(body, []byte("g-recaptcha")) {
		return nil, ErrTooManyTries
	}
	return body, nil
}

// resolve makes href absolute against the client's base URL.
func (c *Client) resolve(href string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
