package advisor

import (
	"fmt"
	"strings"

	"github.com/omerch/updatescout/internal/models"
)

// fallbackAnalysis produces a deterministic recommendation when no LLM is
// configured or the call failed. It counts sentiment over the extracted
// evidence and states its limits instead of guessing.
func fallbackAnalysis(device *models.DeviceRecord, versionText string, snippets []models.EvidenceSnippet) string {
	subject := device.FullName
	if versionText != "" {
		subject = fmt.Sprintf("%s on the %s", versionText, device.FullName)
	}

	if len(snippets) == 0 {
		return fmt.Sprintf(
			"I could not find enough user reports about %s to give a confident answer. "+
				"This usually means the update is very new or very niche. "+
				"If the update is not urgent, waiting one to two weeks and checking again is the safe choice.",
			subject)
	}

	var positive, negative int
	issues := make(map[models.ExperienceCategory]int)
	for _, sn := range snippets {
		switch sn.Sentiment {
		case models.SentimentPositive:
			positive++
		case models.SentimentNegative:
			negative++
		}
		switch sn.Category {
		case models.CategoryBatteryIssues, models.CategoryPerformanceIssues, models.CategoryStabilityIssues:
			issues[sn.Category]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on %d user reports about %s:\n\n", len(snippets), subject)

	switch {
	case negative > positive*2 && negative >= 3:
		b.WriteString("Recommendation: wait. Complaints clearly outweigh positive reports.\n")
	case positive > negative*2 && positive >= 3:
		b.WriteString("Recommendation: install. Most users report a smooth experience.\n")
	default:
		b.WriteString("Recommendation: install with caution. Reports are mixed; back up your device first.\n")
	}

	fmt.Fprintf(&b, "\nPositive reports: %d. Negative reports: %d.\n", positive, negative)

	if len(issues) > 0 {
		b.WriteString("Reported problem areas:\n")
		for _, cat := range []models.ExperienceCategory{
			models.CategoryBatteryIssues,
			models.CategoryPerformanceIssues,
			models.CategoryStabilityIssues,
		} {
			if n := issues[cat]; n > 0 {
				fmt.Fprintf(&b, "- %s (%d reports)\n", categoryHeading(cat), n)
			}
		}
	}

	b.WriteString("\nThis summary was generated without AI assistance and reflects keyword analysis only.")
	return b.String()
}
