// Package googlebooks implements the catalog client port against the
// Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

var _ driven.CatalogClient = (*Client)(nil)

// Default configuration values. The rate limit is deliberately well
// below Google's quota so batch ingestion does not trip it.
const (
	DefaultBaseURL           = "https://www.googleapis.com/books/v1/volumes"
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 8.0
	DefaultBurstSize         = 2
)

// maxResults is how many volumes one query requests; the best match
// is picked from these.
const maxResults = 5

// Config holds Google Books client settings.
type Config struct {
	// APIKey raises the anonymous quota when set. Optional.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Timeout bounds each HTTP request (default: 10s).
	Timeout time.Duration

	// RequestsPerSecond is the sustained rate limit (default: 8).
	RequestsPerSecond float64
}

// Client looks up book metadata on Google Books. Lookups are rate
// limited with a token bucket; a quota rejection from the API is
// surfaced as domain.ErrQuotaExceeded so callers can abort the batch.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
}

// volumesResponse is the subset of the API response we read.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	Description         string   `json:"description"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// NewClient creates a Google Books client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurstSize),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Lookup finds catalog metadata for a title. The title+author query
// runs first; if it finds nothing the title-only query runs as a
// fallback. No match returns (nil, nil); transient HTTP failures also
// degrade to no match, since enrichment is optional.
func (c *Client) Lookup(ctx context.Context, title, author string) (*domain.CatalogRecord, error) {
	queries := []string{fmt.Sprintf("intitle:%q", title)}
	if author != "" {
		queries = append([]string{fmt.Sprintf("intitle:%q inauthor:%q", title, author)}, queries...)
	}

	for _, query := range queries {
		record, err := c.query(ctx, query)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}
	return nil, nil
}

// query executes one volumes query.
func (c *Client) query(ctx context.Context, query string) (*domain.CatalogRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprint(maxResults))
	params.Set("langRestrict", "en")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transient network failure: treat as no match.
		logger.Debug("Google Books request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Debug("Google Books returned unparseable body: %v", err)
		return nil, nil
	}

	// An error body means the API rejected the request outright, which
	// in practice is a quota or disabled-API condition.
	if data.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, data.Error.Message)
	}

	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, nil
	}

	return buildRecord(bestVolume(data.Items)), nil
}

// bestVolume prefers the volume with the longest description, falling
// back to the first result when none has one.
func bestVolume(items []volume) volume {
	best := items[0]
	bestLen := 0
	for _, item := range items {
		if l := len(item.VolumeInfo.Description); l > bestLen {
			bestLen = l
			best = item
		}
	}
	return best
}

// buildRecord maps a volume to the catalog record shape.
func buildRecord(item volume) *domain.CatalogRecord {
	info := item.VolumeInfo
	return &domain.CatalogRecord{
		CatalogID:   item.ID,
		Title:       info.Title,
		Authors:     info.Authors,
		Description: info.Description,
		ISBN:        extractISBN(info),
		CoverURL:    info.ImageLinks.Thumbnail,
		PurchaseURL: purchaseURL(info),
	}
}

// extractISBN prefers ISBN-13 over ISBN-10.
func extractISBN(info volumeInfo) string {
	for _, wanted := range []string{"ISBN_13", "ISBN_10"} {
		for _, id := range info.IndustryIdentifiers {
			if id.Type == wanted {
				return id.Identifier
			}
		}
	}
	return ""
}

// purchaseURL builds an Amazon link: direct by ISBN-10 (book ISBN-10s
// double as ASINs), otherwise a search link.
func purchaseURL(info volumeInfo) string {
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_10" {
			return "https://www.amazon.com/dp/" + id.Identifier
		}
	}

	if info.Title == "" {
		return ""
	}
	query := info.Title
	if len(info.Authors) > 0 {
		query += " " + info.Authors[0]
	}
	return "https://www.amazon.com/s?k=" + url.QueryEscape(strings.TrimSpace(query))
}
