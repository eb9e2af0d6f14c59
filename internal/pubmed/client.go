package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/OBrink/citation-normalisation/internal/doi"
)

const (
	// BaseURL is the NCBI E-utilities base URL.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the anonymous E-utilities rate (requests per second).
	RateLimit = 3.0

	// RateLimitWithKey is the rate allowed with an API key.
	RateLimitWithKey = 10.0

	toolName = "citenorm"
)

// Client is a rate-limited client for PubMed via E-utilities.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	email      string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the NCBI API key and raises the rate limit accordingly.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
		if key != "" {
			c.limiter = rate.NewLimiter(rate.Limit(RateLimitWithKey), 1)
		}
	}
}

// WithEmail sets the contact address NCBI asks tools to send.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new PubMed client.
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

// FetchByPMID fetches the article with the given PubMed ID.
func (c *Client) FetchByPMID(ctx context.Context, pmid string) (*Article, error) {
	if !doi.IsPMID(pmid) {
		return nil, fmt.Errorf("%w: invalid PMID %q", ErrNotFound, pmid)
	}

	articles, err := c.fetch(ctx, []string{pmid})
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].PMID == pmid {
			return &articles[i], nil
		}
	}
	return nil, ErrNotFound
}

// FetchByDOI searches PubMed for an article carrying the given DOI. The
// fetched article's DOI must match, since the [doi] field search is fuzzy
// for some publishers.
func (c *Client) FetchByDOI(ctx context.Context, d string) (*Article, error) {
	ids, err := c.search(ctx, d+"[doi]")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}

	articles, err := c.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if doi.Equal(articles[i].DOI, d) {
			return &articles[i], nil
		}
	}
	return nil, ErrNotFound
}

// search runs esearch against PubMed and returns the matching PMIDs.
func (c *Client) search(ctx context.Context, term string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmode", "json")
	params.Set("retmax", "5")

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing esearch response: %v", ErrInvalidResponse, err)
	}
	return resp.ESearchResult.IDList, nil
}

// fetch runs efetch for the given PMIDs and parses the returned XML.
func (c *Client) fetch(ctx context.Context, pmids []string) ([]Article, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("retmode", "xml")

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, err
	}
	return ParseArticles(body)
}

// get performs a rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("tool", toolName)
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
