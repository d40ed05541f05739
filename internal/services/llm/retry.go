package llm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RetryConfig defines retry behavior for provider rate-limit handling.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Defaults sized for one-minute quota windows on hosted LLM APIs.
const (
	defaultMaxRetries        = 3
	defaultInitialBackoff    = 5 * time.Second
	defaultMaxBackoff        = 60 * time.Second
	defaultBackoffMultiplier = 2.0
)

// NewDefaultRetryConfig returns a RetryConfig with sensible defaults.
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        defaultMaxRetries,
		InitialBackoff:    defaultInitialBackoff,
		MaxBackoff:        defaultMaxBackoff,
		BackoffMultiplier: defaultBackoffMultiplier,
	}
}

// IsRateLimitError checks if an error is a provider rate-limit error.
// Matches 429 status codes and RESOURCE_EXHAUSTED errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
// in provider error messages.
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay pulls the provider-suggested retry delay out of an
// error message. Returns 0 when no delay is present.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	match := retryDelayRegex.FindStringSubmatch(err.Error())
	if match == nil {
		return 0
	}
	seconds, parseErr := strconv.ParseFloat(match[1], 64)
	if parseErr != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff returns the wait before the given retry attempt,
// honoring a provider-suggested delay when it is longer.
func (c *RetryConfig) CalculateBackoff(attempt int, suggested time.Duration) time.Duration {
	backoff := time.Duration(float64(c.InitialBackoff) * math.Pow(c.BackoffMultiplier, float64(attempt)))
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	if suggested > backoff {
		backoff = suggested
	}
	return backoff
}
