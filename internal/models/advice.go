package models

import "time"

// UpdateAdvice is the final output of one advisory pipeline run.
// It is always non-empty: when every upstream stage degrades to its
// fallback, Limited is set and Recommendation carries a clearly labeled
// limited-information summary instead of silence.
type UpdateAdvice struct {
	ID             string
	Device         DeviceRecord
	VersionText    string
	Recommendation string
	Evidence       []EvidenceSnippet
	Sources        []SearchResultItem
	Provider       string // LLM provider that produced the recommendation, or "fallback"
	Limited        bool
	GeneratedAt    time.Time
}
