package advisor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
	"github.com/omerch/updatescout/internal/services/devices"
)

type stubSearchProvider struct {
	mu      sync.Mutex
	calls   int
	results []models.SearchResultItem
}

func (s *stubSearchProvider) Name() string { return "stub" }

func (s *stubSearchProvider) Search(_ context.Context, _ string, _ interfaces.SearchOptions) ([]models.SearchResultItem, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.results, nil
}

func (s *stubSearchProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memAdviceStorage struct {
	mu     sync.Mutex
	advice map[string]*models.UpdateAdvice
}

func newMemAdviceStorage() *memAdviceStorage {
	return &memAdviceStorage{advice: make(map[string]*models.UpdateAdvice)}
}

func adviceKey(deviceKey, versionText string) string {
	return strings.ToLower(deviceKey) + "|" + strings.ToLower(versionText)
}

func (m *memAdviceStorage) Get(_ context.Context, deviceKey, versionText string) (*models.UpdateAdvice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.advice[adviceKey(deviceKey, versionText)]
	if !ok {
		return nil, interfaces.ErrAdviceNotFound
	}
	return a, nil
}

func (m *memAdviceStorage) Put(_ context.Context, advice *models.UpdateAdvice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advice[adviceKey(advice.Device.DeviceKey, advice.VersionText)] = advice
	return nil
}

func (m *memAdviceStorage) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for k, a := range m.advice {
		if a.GeneratedAt.Before(cutoff) {
			delete(m.advice, k)
			deleted++
		}
	}
	return deleted, nil
}

var _ interfaces.AdviceStorage = (*memAdviceStorage)(nil)

func newTestAdvisor(t *testing.T, search *stubSearchProvider, cache interfaces.AdviceStorage) *Service {
	t.Helper()
	data, err := devices.LoadCatalogData()
	if err != nil {
		t.Fatalf("LoadCatalogData: %v", err)
	}
	cfg := common.NewDefaultConfig()

	deps := Deps{
		Catalog:     devices.NewCatalog(data, arbor.NewLogger()),
		AdviceCache: cache,
	}
	if search != nil {
		deps.SearchProviders = []interfaces.SearchProvider{search}
	}
	return NewService(cfg, deps, arbor.NewLogger())
}

func TestAdviseFullPipelineWithFallback(t *testing.T) {
	search := &stubSearchProvider{
		results: []models.SearchResultItem{
			{
				Title:   "Galaxy S24 Ultra One UI 7 battery drain complaints",
				URL:     "https://forum.example/1",
				Snippet: "after updating the battery drains much faster and the phone has lag",
			},
			{
				Title:   "S24 Ultra update review",
				URL:     "https://blog.example/2",
				Snippet: "updated last week, everything works fine and feels smooth",
			},
			{
				Title:   "Unrelated laptop deals",
				URL:     "https://shop.example/3",
				Snippet: "best prices today",
			},
		},
	}

	service := newTestAdvisor(t, search, newMemAdviceStorage())
	advice, err := service.Advise(context.Background(), "Should I update my Galaxy S24 Ultra to One UI 7?")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}

	if advice.Device.DeviceKey != "s24 ultra" {
		t.Errorf("Device = %q, want s24 ultra", advice.Device.DeviceKey)
	}
	if advice.VersionText != "One UI 7" {
		t.Errorf("VersionText = %q, want One UI 7", advice.VersionText)
	}
	if advice.Provider != "fallback" {
		t.Errorf("Provider = %q, want fallback (no LLM configured)", advice.Provider)
	}
	if advice.Recommendation == "" {
		t.Error("Recommendation must never be empty")
	}
	if len(advice.Sources) == 0 {
		t.Error("expected ranked sources")
	}
	for _, src := range advice.Sources {
		if src.URL == "https://shop.example/3" {
			t.Error("unrelated result survived filtering")
		}
	}
	if len(advice.Evidence) == 0 {
		t.Error("expected extracted evidence")
	}
	if advice.Limited {
		t.Error("advice with evidence must not be marked limited")
	}
	if advice.ID == "" {
		t.Error("advice must carry an ID")
	}
}

func TestAdviseServesFromCache(t *testing.T) {
	search := &stubSearchProvider{
		results: []models.SearchResultItem{
			{
				Title:   "Pixel 8 Android 15 review",
				URL:     "https://blog.example/1",
				Snippet: "updated and the battery improved noticeably",
			},
		},
	}
	cache := newMemAdviceStorage()
	service := newTestAdvisor(t, search, cache)
	ctx := context.Background()

	first, err := service.Advise(ctx, "Should I update my Pixel 8 to Android 15?")
	if err != nil {
		t.Fatalf("first Advise: %v", err)
	}
	callsAfterFirst := search.callCount()
	if callsAfterFirst == 0 {
		t.Fatal("first run must hit the search provider")
	}

	second, err := service.Advise(ctx, "Should I update my Pixel 8 to Android 15?")
	if err != nil {
		t.Fatalf("second Advise: %v", err)
	}
	if search.callCount() != callsAfterFirst {
		t.Error("second run must be served from cache without new searches")
	}
	if second.ID != first.ID {
		t.Errorf("cached advice ID = %q, want %q", second.ID, first.ID)
	}
}

func TestAdviseUnknownDeviceSynthesized(t *testing.T) {
	search := &stubSearchProvider{}
	service := newTestAdvisor(t, search, newMemAdviceStorage())

	advice, err := service.Advise(context.Background(), "Should I update my Nokia G42 to Android 15?")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if advice.Device.Series != "Unknown" {
		t.Errorf("Series = %q, want Unknown for synthesized device", advice.Device.Series)
	}
	if !advice.Limited {
		t.Error("advice with no evidence must be marked limited")
	}
	if !strings.Contains(advice.Recommendation, "waiting") {
		t.Errorf("limited recommendation should advise waiting, got %q", advice.Recommendation)
	}
}

func TestAdviseNoProvidersStillAnswers(t *testing.T) {
	service := newTestAdvisor(t, nil, nil)

	advice, err := service.Advise(context.Background(), "Galaxy S24 One UI 7")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if advice.Recommendation == "" {
		t.Error("Recommendation must never be empty")
	}
	if !advice.Limited {
		t.Error("no-results advice must be limited")
	}
}

func TestSocialSnippetTruncationKeepsValidUTF8(t *testing.T) {
	posts := []models.SocialPost{
		{Title: "עדכון", URL: "https://reddit.example/1", Body: strings.Repeat("ב", 400)},
		{Title: "short", URL: "https://reddit.example/2", Body: "הסוללה השתפרה מאוד אחרי העדכון"},
	}

	results := socialAsResults(posts)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	long := results[0].Snippet
	if !utf8.ValidString(long) {
		t.Errorf("truncated snippet is not valid UTF-8: %q", long[len(long)-6:])
	}
	if got := utf8.RuneCountInString(long); got != 300 {
		t.Errorf("Expected 300-rune snippet, got %d runes", got)
	}

	if results[1].Snippet != posts[1].Body {
		t.Errorf("short body must pass through untouched, got %q", results[1].Snippet)
	}
}

func TestExtractEvidenceSocialBodyExtractedOnce(t *testing.T) {
	service := newTestAdvisor(t, nil, nil)

	postBody := "Battery drains faster after the update. Overall performance feels smooth though."
	ranked := []models.SearchResultItem{
		{
			Title:   "One UI 7 on my S24 Ultra",
			URL:     "https://reddit.example/r/galaxys24/1",
			Snippet: truncateRunes(postBody, 300),
			Source:  "reddit",
		},
		{
			Title:   "S24 Ultra update thread",
			URL:     "https://forum.example/a",
			Snippet: "Battery life improved after updating",
			Source:  "websearch",
		},
	}
	social := []models.SocialPost{
		{Title: "One UI 7 on my S24 Ultra", URL: "https://reddit.example/r/galaxys24/1", Body: postBody},
	}

	snippets := service.extractEvidence(ranked, social)

	drains := 0
	webSourced := 0
	for _, sn := range snippets {
		if sn.Content == "Battery drains faster after the update" {
			drains++
		}
		if sn.SourceURL == "https://forum.example/a" {
			webSourced++
		}
	}
	if drains != 1 {
		t.Errorf("Expected the social sentence extracted exactly once, got %d", drains)
	}
	if webSourced == 0 {
		t.Error("Expected evidence from the web result as well")
	}
}
