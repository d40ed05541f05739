package models

import "time"

// SearchResultItem is one raw hit returned by a search provider, plus the
// relevance fields derived during filtering. URL is the de-duplication key
// across the merged result set of all query variants.
type SearchResultItem struct {
	Title            string
	URL              string
	Snippet          string
	Source           string // provider name, e.g. "websearch", "reddit"
	SourceQueryIndex int    // which query variant produced this hit
	RelevanceScore   float64
}

// SocialPost is one forum/social item returned by the social provider.
// Token handling and pagination are the provider's concern; the pipeline
// only ever sees the fields below.
type SocialPost struct {
	Title     string
	URL       string
	Body      string
	Author    string
	Score     int
	CreatedAt time.Time
}
