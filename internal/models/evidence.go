package models

// Sentiment is a coarse polarity label derived from keyword counts.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// ExperienceCategory classifies what aspect of the update a snippet talks
// about. Derivation is first-match-wins over an ordered keyword table, not
// multi-label.
type ExperienceCategory string

const (
	CategoryBatteryIssues     ExperienceCategory = "battery_issues"
	CategoryPerformanceIssues ExperienceCategory = "performance_issues"
	CategoryStabilityIssues   ExperienceCategory = "stability_issues"
	CategoryPositive          ExperienceCategory = "positive"
	CategoryRecommendation    ExperienceCategory = "recommendation"
	CategoryGeneral           ExperienceCategory = "general"
)

// EvidenceSnippet is a short extracted passage classified as a candidate
// user-experience statement. Content length is bounded by the extractor's
// acceptance window; out-of-window units are discarded, never truncated.
type EvidenceSnippet struct {
	Content      string
	Sentiment    Sentiment
	IsUserReport bool
	Category     ExperienceCategory
	SourceURL    string
}
