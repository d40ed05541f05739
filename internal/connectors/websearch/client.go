package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/httpclient"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

// Client talks to a Serper-style JSON web-search API: POST a query, get
// back organic results. Rate limiting is client-side so a burst of query
// variants doesn't trip the provider's rate limits.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// searchRequest is the provider's request body.
type searchRequest struct {
	Query        string `json:"q"`
	Page         int    `json:"page,omitempty"`
	DateRestrict string `json:"tbs,omitempty"`
}

// searchResponse is the subset of the provider's response the pipeline uses.
type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// NewClient creates a web-search client from configuration.
func NewClient(cfg *common.SearchConfig, logger arbor.ILogger) *Client {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: httpclient.NewDefaultHTTPClient(timeout),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Name identifies this provider in logs and result source tags.
func (c *Client) Name() string {
	return "websearch"
}

// Search executes one query against the search API. Callers treat any
// error as zero results from this query variant.
func (c *Client) Search(ctx context.Context, query string, opts interfaces.SearchOptions) ([]models.SearchResultItem, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("web search API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait canceled: %w", err)
	}

	body, err := json.Marshal(searchRequest{
		Query:        query,
		Page:         opts.Page,
		DateRestrict: dateRestrictParam(opts.DateRestrict),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]models.SearchResultItem, 0, len(parsed.Organic))
	for _, hit := range parsed.Organic {
		if hit.Link == "" {
			continue
		}
		results = append(results, models.SearchResultItem{
			Title:   hit.Title,
			URL:     hit.Link,
			Snippet: hit.Snippet,
			Source:  c.Name(),
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("Web search completed")

	return results, nil
}

// dateRestrictParam converts the compact "m6" style restriction into the
// provider's tbs syntax. Empty passes through.
func dateRestrictParam(restrict string) string {
	if restrict == "" {
		return ""
	}
	return "qdr:" + restrict
}

// Compile-time assertion: Client implements the SearchProvider interface
var _ interfaces.SearchProvider = (*Client)(nil)
