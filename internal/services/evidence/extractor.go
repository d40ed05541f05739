package evidence

import (
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/models"
)

// Extractor scans longer text blocks (post bodies, comments) and extracts
// short, classified user-experience snippets. Deterministic: identical text
// always yields identical output.
type Extractor struct {
	minLen int // acceptance window lower bound, inclusive, in characters
	maxLen int // acceptance window upper bound, inclusive, in characters
	logger arbor.ILogger
}

// NewExtractor creates an evidence extractor with the given acceptance
// window. Non-positive bounds fall back to the 10..350 defaults.
func NewExtractor(minLen, maxLen int, logger arbor.ILogger) *Extractor {
	if minLen <= 0 {
		minLen = 10
	}
	if maxLen <= 0 {
		maxLen = 350
	}
	return &Extractor{minLen: minLen, maxLen: maxLen, logger: logger}
}

// ExtractFromText splits text into sentence-like units and runs each
// through the length gate, genericity gate, and classification. Units
// outside the length window are discarded, never truncated.
func (e *Extractor) ExtractFromText(text, sourceURL string) []models.EvidenceSnippet {
	units := splitUnits(text)

	var snippets []models.EvidenceSnippet
	for _, unit := range units {
		length := utf8.RuneCountInString(unit)
		if length < e.minLen || length > e.maxLen {
			continue
		}

		lower := strings.ToLower(unit)
		if isGenericText(lower) {
			continue
		}

		snippets = append(snippets, models.EvidenceSnippet{
			Content:      unit,
			Sentiment:    scoreSentiment(lower),
			IsUserReport: isUserReport(lower),
			Category:     deriveCategory(lower),
			SourceURL:    sourceURL,
		})
	}

	e.logger.Debug().
		Int("examined", len(units)).
		Int("passed", len(snippets)).
		Str("source", sourceURL).
		Msg("Extracted evidence snippets")

	return snippets
}

// splitUnits breaks a text block into trimmed sentence-like candidates.
func splitUnits(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';' || r == '•'
	})
	units := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			units = append(units, trimmed)
		}
	}
	return units
}

// isGenericText rejects boilerplate and meta-commentary. The gate is
// permissive toward short units carrying an authentic experiential marker,
// and rejects purely meta-referential units regardless of length.
func isGenericText(lower string) bool {
	if containsAny(lower, experientialKeywords) {
		return false
	}
	return containsAny(lower, genericMarkers)
}

// isUserReport requires at least one experiential keyword AND no exclusion
// keyword. An exclusion keyword always disqualifies.
func isUserReport(lower string) bool {
	if containsAny(lower, exclusionKeywords) {
		return false
	}
	return containsAny(lower, experientialKeywords)
}

// scoreSentiment counts positive and negative keyword occurrences.
// Majority wins; a nonzero tie is labeled mixed, a 0/0 tie neutral.
func scoreSentiment(lower string) models.Sentiment {
	positive := countMatches(lower, positiveWords)
	negative := countMatches(lower, negativeWords)

	switch {
	case positive > negative:
		return models.SentimentPositive
	case negative > positive:
		return models.SentimentNegative
	case positive > 0:
		return models.SentimentMixed
	default:
		return models.SentimentNeutral
	}
}

// deriveCategory applies the ordered category table; first group with a
// keyword hit wins.
func deriveCategory(lower string) models.ExperienceCategory {
	for _, group := range categoryGroups {
		if containsAny(lower, group.keywords) {
			return models.ExperienceCategory(group.category)
		}
	}
	return models.CategoryGeneral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		count += strings.Count(text, kw)
	}
	return count
}
