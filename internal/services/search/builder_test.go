package search

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildQueries(t *testing.T) {
	variants := []string{"s24", "galaxy s24 ultra", "s24 ultra"}

	t.Run("one query per strategy", func(t *testing.T) {
		builder := NewBuilder(6)
		queries := builder.BuildQueries(variants, "One UI 7")
		if len(queries) != 6 {
			t.Fatalf("got %d queries, want 6", len(queries))
		}
		for i, q := range queries {
			if !strings.Contains(q, "galaxy s24 ultra") {
				t.Errorf("query %d %q missing representative variant", i, q)
			}
			if !strings.Contains(q, "One UI 7") {
				t.Errorf("query %d %q missing version", i, q)
			}
		}
	})

	t.Run("strategy cap", func(t *testing.T) {
		builder := NewBuilder(3)
		queries := builder.BuildQueries(variants, "One UI 7")
		if len(queries) != 3 {
			t.Errorf("got %d queries, want 3", len(queries))
		}
	})

	t.Run("no duplicates", func(t *testing.T) {
		builder := NewBuilder(0)
		queries := builder.BuildQueries(variants, "Android 15")
		seen := make(map[string]bool)
		for _, q := range queries {
			if seen[q] {
				t.Errorf("duplicate query %q", q)
			}
			seen[q] = true
		}
	})

	t.Run("exact phrase strategy quoting", func(t *testing.T) {
		builder := NewBuilder(0)
		queries := builder.BuildQueries(variants, "One UI 7")
		want := fmt.Sprintf("%q galaxy s24 ultra experience", "updated to One UI 7")
		found := false
		for _, q := range queries {
			if q == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing exact-phrase query %q in %v", want, queries)
		}
	})

	t.Run("no version falls back to generic query", func(t *testing.T) {
		builder := NewBuilder(6)
		queries := builder.BuildQueries(variants, "")
		if len(queries) != 1 {
			t.Fatalf("got %d queries, want 1", len(queries))
		}
		if queries[0] != "galaxy s24 ultra update experience" {
			t.Errorf("fallback query = %q", queries[0])
		}
	})

	t.Run("no variants yields nothing", func(t *testing.T) {
		builder := NewBuilder(6)
		if queries := builder.BuildQueries(nil, "Android 15"); queries != nil {
			t.Errorf("got %v, want nil", queries)
		}
	})
}
