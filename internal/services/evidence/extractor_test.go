package evidence

import (
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/models"
)

func newTestExtractor() *Extractor {
	return NewExtractor(10, 350, arbor.NewLogger())
}

func extractOne(t *testing.T, text string) models.EvidenceSnippet {
	t.Helper()
	snippets := newTestExtractor().ExtractFromText(text, "https://example.com/post")
	if len(snippets) != 1 {
		t.Fatalf("got %d snippets from %q, want 1", len(snippets), text)
	}
	return snippets[0]
}

func TestSplitUnits(t *testing.T) {
	units := splitUnits("First sentence. Second one! Third?\nFourth line; fifth")
	if len(units) != 5 {
		t.Fatalf("got %d units, want 5: %v", len(units), units)
	}
	if units[0] != "First sentence" {
		t.Errorf("units[0] = %q", units[0])
	}
}

func TestLengthGateInclusive(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name string
		unit string
		want int
	}{
		{"below minimum", "battery 1", 0},                           // 9 runes
		{"at minimum", "battery ok", 1},                             // 10 runes
		{"at maximum", "battery " + strings.Repeat("a", 342), 1},    // 350 runes
		{"above maximum", "battery " + strings.Repeat("a", 343), 0}, // 351 runes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.ExtractFromText(tt.unit, "u")
			if len(got) != tt.want {
				t.Errorf("ExtractFromText(%d runes) kept %d snippets, want %d",
					len([]rune(tt.unit)), len(got), tt.want)
			}
		})
	}
}

func TestGenericGate(t *testing.T) {
	extractor := newTestExtractor()

	t.Run("pure boilerplate rejected", func(t *testing.T) {
		got := extractor.ExtractFromText("according to reviews and articles online", "u")
		if len(got) != 0 {
			t.Errorf("boilerplate survived: %+v", got)
		}
	})

	t.Run("experiential marker overrides generic marker", func(t *testing.T) {
		sn := extractOne(t, "according to my experience the battery improved a lot")
		if sn.Content == "" {
			t.Error("expected content")
		}
	})

	t.Run("hebrew experiential kept", func(t *testing.T) {
		sn := extractOne(t, "הסוללה השתפרה מאוד אחרי העדכון")
		if !sn.IsUserReport {
			t.Error("hebrew experiential unit must be a user report")
		}
	})
}

func TestIsUserReportExclusionDominates(t *testing.T) {
	sn := extractOne(t, "I updated but Samsung announced the rollout schedule")
	if sn.IsUserReport {
		t.Error("exclusion keyword must disqualify the user-report flag")
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want models.Sentiment
	}{
		{"positive majority", "after the update everything is smooth and faster", models.SentimentPositive},
		{"negative majority", "the update brought battery drain and a camera bug", models.SentimentNegative},
		{"nonzero tie is mixed", "performance is smooth but there is lag", models.SentimentMixed},
		{"no hits is neutral", "installed yesterday on my phone", models.SentimentNeutral},
		{"hebrew positive", "הסוללה השתפרה והמכשיר מהיר", models.SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn := extractOne(t, tt.unit)
			if sn.Sentiment != tt.want {
				t.Errorf("Sentiment = %q, want %q", sn.Sentiment, tt.want)
			}
		})
	}
}

func TestDeriveCategoryOrder(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want models.ExperienceCategory
	}{
		{"battery wins over performance", "battery drain and lag after update", models.CategoryBatteryIssues},
		{"performance", "noticeable lag since the upgrade", models.CategoryPerformanceIssues},
		{"positive", "works fine after the update", models.CategoryPositive},
		{"stability", "the phone crashes daily since installing", models.CategoryStabilityIssues},
		{"recommendation", "i would recommend the new update", models.CategoryRecommendation},
		{"general fallback", "installed yesterday on my phone", models.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn := extractOne(t, tt.unit)
			if sn.Category != tt.want {
				t.Errorf("Category = %q, want %q", sn.Category, tt.want)
			}
		})
	}
}

func TestExtractMixedLanguagePost(t *testing.T) {
	post := "עדכנתי את המכשיר אתמול, הסוללה השתפרה והכל עובד מהר. " +
		"Some boilerplate, read more here. " +
		"The camera crashes when zooming though."

	snippets := newTestExtractor().ExtractFromText(post, "https://reddit.com/r/x/1")
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2: %+v", len(snippets), snippets)
	}

	if snippets[0].Sentiment != models.SentimentPositive {
		t.Errorf("hebrew snippet sentiment = %q, want positive", snippets[0].Sentiment)
	}
	if snippets[1].Category != models.CategoryStabilityIssues {
		t.Errorf("crash snippet category = %q, want stability_issues", snippets[1].Category)
	}
	for _, sn := range snippets {
		if sn.SourceURL != "https://reddit.com/r/x/1" {
			t.Errorf("SourceURL = %q", sn.SourceURL)
		}
	}
}
