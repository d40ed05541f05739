package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/httpclient"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

const (
	tokenURL  = "https://www.reddit.com/api/v1/access_token"
	searchURL = "https://oauth.reddit.com/search"
)

// Client searches Reddit via the OAuth application-only (client
// credentials) flow. Token acquisition and refresh are handled by the
// oauth2 token source; the pipeline never sees auth details.
type Client struct {
	httpClient *http.Client
	userAgent  string
	postLimit  int
	logger     arbor.ILogger
}

// listing mirrors the subset of Reddit's search response the pipeline uses.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Permalink  string  `json:"permalink"`
				Selftext   string  `json:"selftext"`
				Author     string  `json:"author"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewClient creates a Reddit client. Returns an error when credentials are
// missing so the caller can wire the pipeline without a social provider.
func NewClient(cfg *common.RedditConfig, logger arbor.ILogger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("reddit client credentials not configured")
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// Reddit rejects requests carrying Go's default user agent, the
	// token exchange included.
	baseClient := httpclient.NewUserAgentClient(cfg.UserAgent, 15*time.Second)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)

	limit := cfg.PostLimit
	if limit <= 0 {
		limit = 25
	}

	return &Client{
		httpClient: conf.Client(ctx),
		userAgent:  cfg.UserAgent,
		postLimit:  limit,
		logger:     logger,
	}, nil
}

// Name identifies this provider in logs.
func (c *Client) Name() string {
	return "reddit"
}

// SearchPosts returns up to limit posts matching the query, newest-first
// per Reddit's relevance sort.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	if limit <= 0 || limit > c.postLimit {
		limit = c.postLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "relevance")
	params.Set("t", "year")
	params.Set("type", "link")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reddit API returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed listing
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode reddit response: %w", err)
	}

	posts := make([]models.SocialPost, 0, len(parsed.Data.Children))
	for _, child := range parsed.Data.Children {
		d := child.Data
		if d.Permalink == "" {
			continue
		}
		posts = append(posts, models.SocialPost{
			Title:     d.Title,
			URL:       "https://www.reddit.com" + d.Permalink,
			Body:      d.Selftext,
			Author:    d.Author,
			Score:     d.Score,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("posts", len(posts)).
		Msg("Reddit search completed")

	return posts, nil
}

// Compile-time assertion: Client implements the SocialProvider interface
var _ interfaces.SocialProvider = (*Client)(nil)
