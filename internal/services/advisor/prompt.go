package advisor

import (
	"fmt"
	"strings"

	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

const systemPrompt = `You are a mobile software update advisor. Users ask whether they should
install a pending OS update on their phone or tablet. You receive user reports
collected from the web and an optional excerpt of the manufacturer's security
bulletin.

Answer with:
1. A clear recommendation (install now, wait, or install with caution).
2. The main issues users report, if any, grouped by theme.
3. The main improvements users report, if any.
4. Security considerations from the bulletin excerpt when one is provided.

Base the answer only on the material provided. When the material is thin, say
so explicitly instead of speculating. Keep the answer under 250 words. Answer
in the language the reports are predominantly written in; default to English.`

// buildPrompt assembles the system and user messages for the recommendation
// request. Evidence is grouped by category so the model sees themes, not a
// flat snippet dump.
func buildPrompt(device *models.DeviceRecord, versionText string, ranked []models.SearchResultItem, snippets []models.EvidenceSnippet, bulletin string) []interfaces.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Device: %s (%s, %s series)\n", device.FullName, device.ManufacturerKey, device.Series)
	if versionText != "" {
		fmt.Fprintf(&b, "Update in question: %s\n", versionText)
	} else {
		b.WriteString("Update in question: latest available update (user did not name a version)\n")
	}
	fmt.Fprintf(&b, "Web results examined: %d\n\n", len(ranked))

	if len(snippets) == 0 {
		b.WriteString("No user reports were found for this device and version.\n")
	} else {
		b.WriteString("User reports, grouped by theme:\n\n")
		for _, group := range groupByCategory(snippets) {
			fmt.Fprintf(&b, "## %s\n", categoryHeading(group.category))
			for _, sn := range group.snippets {
				fmt.Fprintf(&b, "- [%s] %q (%s)\n", sn.Sentiment, sn.Content, sn.SourceURL)
			}
			b.WriteString("\n")
		}
	}

	if bulletin != "" {
		b.WriteString("Manufacturer security bulletin excerpt:\n\n")
		b.WriteString(bulletin)
		b.WriteString("\n")
	}

	return []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

type categoryGroup struct {
	category models.ExperienceCategory
	snippets []models.EvidenceSnippet
}

// groupByCategory buckets snippets preserving the fixed category order.
func groupByCategory(snippets []models.EvidenceSnippet) []categoryGroup {
	order := []models.ExperienceCategory{
		models.CategoryBatteryIssues,
		models.CategoryPerformanceIssues,
		models.CategoryStabilityIssues,
		models.CategoryPositive,
		models.CategoryRecommendation,
		models.CategoryGeneral,
	}

	byCategory := make(map[models.ExperienceCategory][]models.EvidenceSnippet)
	for _, sn := range snippets {
		byCategory[sn.Category] = append(byCategory[sn.Category], sn)
	}

	var groups []categoryGroup
	for _, cat := range order {
		if list := byCategory[cat]; len(list) > 0 {
			groups = append(groups, categoryGroup{category: cat, snippets: list})
		}
	}
	return groups
}

func categoryHeading(cat models.ExperienceCategory) string {
	switch cat {
	case models.CategoryBatteryIssues:
		return "Battery complaints"
	case models.CategoryPerformanceIssues:
		return "Performance complaints"
	case models.CategoryStabilityIssues:
		return "Stability complaints"
	case models.CategoryPositive:
		return "Positive experiences"
	case models.CategoryRecommendation:
		return "Direct recommendations"
	default:
		return "Other reports"
	}
}
