package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the polite-pool request rate (requests per second).
	RateLimit = 10.0

	// DefaultRows is the number of search results requested by default.
	DefaultRows = 1

	// MaxRows is the largest page size Crossref accepts.
	MaxRows = 1000

	projectURL = "https://github.com/OBrink/citation-normalisation"
)

// Client is a rate-limited HTTP client for the Crossref REST API.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the contact address that puts requests in Crossref's polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
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

// NewClient creates a new Crossref API client.
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

// ByDOI fetches the work registered under doi.
func (c *Client) ByDOI(ctx context.Context, doi string) (*Work, error) {
	body, err := c.get(ctx, "/works/"+escapeDOI(doi), nil)
	if err != nil {
		return nil, err
	}

	var resp workResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing work: %v", ErrInvalidResponse, err)
	}
	if resp.Message.DOI == "" && len(resp.Message.Title) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Message, nil
}

// Query runs a relevance-sorted bibliographic search and returns up to rows
// works, best match first. An empty result is reported as ErrNotFound.
func (c *Client) Query(ctx context.Context, keyword string, rows int) ([]Work, error) {
	if rows <= 0 {
		rows = DefaultRows
	}
	if rows > MaxRows {
		rows = MaxRows
	}

	params := url.Values{}
	params.Set("query.bibliographic", keyword)
	params.Set("sort", "relevance")
	params.Set("order", "desc")
	params.Set("rows", strconv.Itoa(rows))

	body, err := c.get(ctx, "/works", params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}
	if len(resp.Message.Items) == 0 {
		return nil, ErrNotFound
	}
	return resp.Message.Items, nil
}

// get performs a rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent())

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
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(string(body), 200)}
	}
	return body, nil
}

func (c *Client) userAgent() string {
	if c.mailto == "" {
		return fmt.Sprintf("citenorm/1.0 (%s)", projectURL)
	}
	return fmt.Sprintf("citenorm/1.0 (%s; mailto:%s)", projectURL, c.mailto)
}

// escapeDOI path-escapes each segment of a DOI, keeping its slashes.
func escapeDOI(doi string) string {
	segments := strings.Split(doi, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
