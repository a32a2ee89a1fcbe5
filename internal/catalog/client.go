package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when the catalog has no product with the given id.
var ErrNotFound = errors.New("product not found")

// Fetcher defines the read operations the storefront client needs from the
// catalog. It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchProducts(ctx context.Context, query Query) (Page, error)
	FetchProduct(ctx context.Context, id string) (Product, error)
	FetchCategories(ctx context.Context) ([]Category, error)
	FetchFilterMetadata(ctx context.Context) (FilterMetadata, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the storefront HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	sessionID string
}

const (
	defaultAPIURL    = "http://127.0.0.1:8081/api/v1"
	defaultUserAgent = "vitrine/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// NewClient builds a Client for the API rooted at apiURL, for example
// "https://shop.example.com/api/v1". A bare host:port is treated as http.
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		sessionID: uuid.NewString(),
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchProducts retrieves one page of the product listing.
func (c *Client) FetchProducts(ctx context.Context, query Query) (Page, error) {
	if c == nil {
		return Page{}, errors.New("client is nil")
	}
	rel := &url.URL{Path: "store/products", RawQuery: query.Values().Encode()}
	var results []Product
	meta, err := c.get(ctx, rel, &results)
	if err != nil {
		return Page{}, err
	}
	page := Page{Results: results, Count: len(results)}
	if meta != nil {
		page.Count = meta.Total
		page.Number = meta.Page
		page.TotalPages = meta.TotalPages
		page.HasNext = meta.Page < meta.TotalPages
	}
	return page, nil
}

// FetchProduct retrieves the full record for one product.
func (c *Client) FetchProduct(ctx context.Context, id string) (Product, error) {
	if c == nil {
		return Product{}, errors.New("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, errors.New("product id required")
	}
	// RawPath keeps a "/" inside the id from splitting the path.
	rel := &url.URL{Path: "store/products/" + id, RawPath: "store/products/" + url.PathEscape(id)}
	var product Product
	if _, err := c.get(ctx, rel, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// FetchCategories retrieves the category tree.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	var categories []Category
	if _, err := c.get(ctx, &url.URL{Path: "store/categories"}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// FetchFilterMetadata retrieves the available filter space.
func (c *Client) FetchFilterMetadata(ctx context.Context) (FilterMetadata, error) {
	if c == nil {
		return FilterMetadata{}, errors.New("client is nil")
	}
	var meta FilterMetadata
	if _, err := c.get(ctx, &url.URL{Path: "store/filters/metadata"}, &meta); err != nil {
		return FilterMetadata{}, err
	}
	return meta, nil
}

func (c *Client) get(ctx context.Context, rel *url.URL, dest any) (*Pagination, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Session-ID", c.sessionID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(ErrNotFound, "api %s", rel.Path)
	}
	if resp.StatusCode >= 400 {
		return nil, statusError(rel, resp)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if env.Error {
		return nil, errors.Errorf("api %s: %s", rel.Path, env.Message)
	}
	if dest != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return nil, errors.Wrap(err, "decode response data")
		}
	}
	return env.Meta, nil
}

func statusError(rel *url.URL, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env Envelope
	if json.Unmarshal(body, &env) == nil && strings.TrimSpace(env.Message) != "" {
		return fmt.Errorf("api %s returned status %d: %s", rel.Path, resp.StatusCode, env.Message)
	}
	return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	// Relative references resolve against the last path segment, so the
	// root must end with a slash to keep /api/v1 in front of store/...
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
