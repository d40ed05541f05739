package search

import (
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/models"
)

// Filter de-duplicates, filters, and ranks raw search hits. Deterministic
// for fixed inputs: the sort is stable and ties keep input order.
type Filter struct {
	exactMatchBonus float64
	maxResults      int
	logger          arbor.ILogger
}

// NewFilter creates a result filter. exactMatchBonus is the per-word title
// bonus for exact-word occurrences; maxResults caps the output after ranking.
func NewFilter(exactMatchBonus float64, maxResults int, logger arbor.ILogger) *Filter {
	if exactMatchBonus <= 0 {
		exactMatchBonus = 0.2
	}
	if maxResults <= 0 {
		maxResults = 100
	}
	return &Filter{
		exactMatchBonus: exactMatchBonus,
		maxResults:      maxResults,
		logger:          logger,
	}
}

// FilterAndRank processes the merged result set of all query variants:
//
//  1. Dedup by URL, keeping the first occurrence's metadata.
//  2. Drop items where no device variant appears in title, snippet, or URL.
//  3. Score each survivor against the reference query.
//  4. Stable-sort: title variant matches first, then relevance descending.
//  5. Cap the output after ranking, so ordering sees the full set.
func (f *Filter) FilterAndRank(rawResults []models.SearchResultItem, deviceVariants []string, referenceQuery string) []models.SearchResultItem {
	seen := make(map[string]struct{}, len(rawResults))
	filtered := make([]models.SearchResultItem, 0, len(rawResults))
	duplicates := 0

	for _, item := range rawResults {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			duplicates++
			continue
		}
		seen[url] = struct{}{}

		if !matchesAnyVariant(item, deviceVariants) {
			continue
		}

		item.RelevanceScore = f.relevanceScore(referenceQuery, item.Title)
		filtered = append(filtered, item)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		iTitle := titleHasVariant(filtered[i].Title, deviceVariants)
		jTitle := titleHasVariant(filtered[j].Title, deviceVariants)
		if iTitle != jTitle {
			return iTitle
		}
		return filtered[i].RelevanceScore > filtered[j].RelevanceScore
	})

	if len(filtered) > f.maxResults {
		filtered = filtered[:f.maxResults]
	}

	f.logger.Debug().
		Int("raw", len(rawResults)).
		Int("duplicates", duplicates).
		Int("kept", len(filtered)).
		Msg("Filtered and ranked search results")

	return filtered
}

// relevanceScore measures how much of the reference query the title covers:
// the fraction of significant query words (length > 2) found as substrings
// of the title, plus a bonus per word that also occurs as an exact word.
// Capped at 1.0.
func (f *Filter) relevanceScore(query, title string) float64 {
	titleLower := strings.ToLower(title)
	titleWords := strings.Fields(titleLower)

	significant := 0
	matched := 0
	bonus := 0.0
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, `"'.,!?`)
		if len(word) <= 2 {
			continue
		}
		significant++
		if strings.Contains(titleLower, word) {
			matched++
		}
		for _, tw := range titleWords {
			if strings.Trim(tw, `"'.,!?:;()`) == word {
				bonus += f.exactMatchBonus
			}
		}
	}

	if significant == 0 {
		return 0
	}
	score := float64(matched)/float64(significant) + bonus
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// matchesAnyVariant reports whether at least one device variant appears,
// case-insensitively, in the item's title, snippet, or URL.
func matchesAnyVariant(item models.SearchResultItem, variants []string) bool {
	title := strings.ToLower(item.Title)
	snippet := strings.ToLower(item.Snippet)
	url := strings.ToLower(item.URL)
	for _, v := range variants {
		v = strings.ToLower(v)
		if v == "" {
			continue
		}
		if strings.Contains(title, v) || strings.Contains(snippet, v) || strings.Contains(url, v) {
			return true
		}
	}
	return false
}

func titleHasVariant(title string, variants []string) bool {
	titleLower := strings.ToLower(title)
	for _, v := range variants {
		if v != "" && strings.Contains(titleLower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}
