package llm

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", errors.New("API returned status 429"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"rate limit text", errors.New("rate limit exceeded, slow down"), true},
		{"quota text", errors.New("quota exceeded for model"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil", nil, 0},
		{"please retry", errors.New("429: Please retry in 7s"), 7 * time.Second},
		{"retryDelay field", errors.New(`details: retryDelay: 2.5s`), 2500 * time.Millisecond},
		{"no delay", errors.New("internal server error"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRetryDelay(tt.err); got != tt.want {
				t.Errorf("ExtractRetryDelay(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	if got := cfg.CalculateBackoff(0, 0); got != defaultInitialBackoff {
		t.Errorf("attempt 0 backoff = %v, want %v", got, defaultInitialBackoff)
	}
	if got := cfg.CalculateBackoff(1, 0); got != 2*defaultInitialBackoff {
		t.Errorf("attempt 1 backoff = %v, want %v", got, 2*defaultInitialBackoff)
	}
	if got := cfg.CalculateBackoff(10, 0); got != defaultMaxBackoff {
		t.Errorf("large attempt backoff = %v, want cap %v", got, defaultMaxBackoff)
	}

	suggested := 90 * time.Second
	if got := cfg.CalculateBackoff(0, suggested); got != suggested {
		t.Errorf("suggested delay backoff = %v, want %v", got, suggested)
	}
}
