package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/interfaces"
)

func testConfig(endpoint string) *common.SearchConfig {
	return &common.SearchConfig{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		RatePerSecond:  100,
		RequestTimeout: "5s",
	}
}

func TestSearch(t *testing.T) {
	var gotRequest searchRequest
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-KEY")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "Pixel 8 review", "link": "https://a.example/1", "snippet": "solid update"},
				{"title": "missing link", "link": "", "snippet": "dropped"},
				{"title": "Forum thread", "link": "https://b.example/2", "snippet": "battery talk"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	results, err := client.Search(context.Background(), "pixel 8 android 15 review", interfaces.SearchOptions{
		Page:         2,
		DateRestrict: "m6",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotAPIKey != "test-key" {
		t.Errorf("X-API-KEY = %q", gotAPIKey)
	}
	if gotRequest.Query != "pixel 8 android 15 review" {
		t.Errorf("request query = %q", gotRequest.Query)
	}
	if gotRequest.Page != 2 {
		t.Errorf("request page = %d, want 2", gotRequest.Page)
	}
	if gotRequest.DateRestrict != "qdr:m6" {
		t.Errorf("request tbs = %q, want qdr:m6", gotRequest.DateRestrict)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (empty link dropped)", len(results))
	}
	if results[0].Title != "Pixel 8 review" || results[0].URL != "https://a.example/1" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Source != "websearch" {
		t.Errorf("Source = %q, want websearch", results[0].Source)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	if _, err := client.Search(context.Background(), "anything", interfaces.SearchOptions{}); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestSearchMissingAPIKey(t *testing.T) {
	cfg := testConfig("https://unused.example")
	cfg.APIKey = ""
	client := NewClient(cfg, arbor.NewLogger())
	if _, err := client.Search(context.Background(), "anything", interfaces.SearchOptions{}); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}
