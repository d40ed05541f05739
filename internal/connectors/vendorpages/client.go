package vendorpages

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/httpclient"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

// Client fetches manufacturer security/update bulletin pages and reduces
// them to markdown for prompt context. Navigation, scripts, and footer
// chrome are stripped before conversion.
type Client struct {
	httpClient *http.Client
	converter  *md.Converter
	maxLen     int
	logger     arbor.ILogger
}

// NewClient creates a bulletin fetcher from configuration.
func NewClient(cfg *common.VendorConfig, logger arbor.ILogger) *Client {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxLen := cfg.MaxContentLen
	if maxLen <= 0 {
		maxLen = 4000
	}
	return &Client{
		httpClient: httpclient.NewDefaultHTTPClient(timeout),
		converter:  md.NewConverter("", true, nil),
		maxLen:     maxLen,
		logger:     logger,
	}
}

// FetchBulletin downloads the manufacturer's security page and returns its
// main content as markdown, capped at the configured length.
func (c *Client) FetchBulletin(ctx context.Context, manufacturer models.ManufacturerInfo) (string, error) {
	if manufacturer.SecurityURL == "" {
		return "", fmt.Errorf("no security URL for manufacturer %q", manufacturer.Key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manufacturer.SecurityURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create bulletin request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bulletin fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bulletin page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse bulletin HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	content := doc.Find("main")
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	html, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("failed to extract bulletin content: %w", err)
	}

	markdown, err := c.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert bulletin to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if runes := []rune(markdown); len(runes) > c.maxLen {
		markdown = string(runes[:c.maxLen])
	}

	c.logger.Debug().
		Str("manufacturer", manufacturer.Key).
		Int("content_len", len(markdown)).
		Msg("Fetched vendor bulletin")

	return markdown, nil
}

// Compile-time assertion: Client implements the BulletinProvider interface
var _ interfaces.BulletinProvider = (*Client)(nil)
