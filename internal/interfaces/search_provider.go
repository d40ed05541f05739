package interfaces

import (
	"context"

	"github.com/omerch/updatescout/internal/models"
)

// SearchOptions carries the pagination and freshness parameters a provider
// understands. Zero values mean provider defaults.
type SearchOptions struct {
	// Page is the 1-based result page to fetch.
	Page int

	// DateRestrict limits results by age using the provider's syntax
	// (e.g. "m6" for the last six months). Empty means no restriction.
	DateRestrict string
}

// SearchProvider is the external web-search collaborator. Implementations
// own HTTP, auth, and rate limiting; the pipeline only supplies query
// strings and consumes {title, url, snippet} rows. A failed call returns an
// error which callers treat as zero results from that query variant.
type SearchProvider interface {
	// Name identifies the provider in logs and result source tags.
	Name() string

	// Search executes one query and returns raw hits. An empty slice with a
	// nil error is a valid outcome.
	Search(ctx context.Context, query string, opts SearchOptions) ([]models.SearchResultItem, error)
}

// SocialProvider is the forum/social collaborator (OAuth-token based).
// Token acquisition and refresh are entirely the implementation's concern.
type SocialProvider interface {
	Name() string

	// SearchPosts returns up to limit posts matching the query.
	SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error)
}

// BulletinProvider fetches a manufacturer security/update bulletin page and
// returns its readable content as markdown, for inclusion in prompt context.
type BulletinProvider interface {
	// FetchBulletin returns markdown content for the manufacturer's security
	// page, or an error the caller degrades to empty context.
	FetchBulletin(ctx context.Context, manufacturer models.ManufacturerInfo) (string, error)
}
