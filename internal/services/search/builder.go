package search

import (
	"fmt"
	"strings"
)

// phrasingStrategy is one way people phrase update questions in search.
// Strategies are data, not code paths: the builder formats each one with a
// representative device variant and the target OS version.
type phrasingStrategy struct {
	name   string
	format string // two %s verbs: device, version
}

// Ordered by expected usefulness; the configured cap truncates from the end.
var phrasingStrategies = []phrasingStrategy{
	{"review", "%s %s update review feedback"},
	{"problems", "%s %s update problems bugs battery drain"},
	{"post-update", "%s after updating to %s"},
	{"exact-phrase", `"updated to %[2]s" %[1]s experience`},
	{"worth-updating", "%s %s worth updating"},
	{"should-update", "should I update %s to %s"},
}

// Builder produces the search-engine query strings for one pipeline run.
// Pure string work; HTTP belongs to the providers.
type Builder struct {
	maxStrategies int
}

// NewBuilder creates a query builder. maxStrategies caps the number of
// phrasing strategies emitted (<=0 means all).
func NewBuilder(maxStrategies int) *Builder {
	if maxStrategies <= 0 || maxStrategies > len(phrasingStrategies) {
		maxStrategies = len(phrasingStrategies)
	}
	return &Builder{maxStrategies: maxStrategies}
}

// BuildQueries emits one query per phrasing strategy using a representative
// device variant. The list is never empty for non-empty input: with no
// version text the device name alone is queried.
func (b *Builder) BuildQueries(deviceVariants []string, osVersionText string) []string {
	device := representativeVariant(deviceVariants)
	if device == "" {
		return nil
	}

	version := strings.TrimSpace(osVersionText)
	if version == "" {
		return []string{device + " update experience"}
	}

	queries := make([]string, 0, b.maxStrategies)
	for _, strategy := range phrasingStrategies[:b.maxStrategies] {
		queries = append(queries, fmt.Sprintf(strategy.format, device, version))
	}
	return queries
}

// representativeVariant picks the variant used in query text: the longest
// one, which is the most explicit rendering of the device name.
func representativeVariant(variants []string) string {
	best := ""
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}
