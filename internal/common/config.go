package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Search      SearchConfig    `toml:"search"`
	Reddit      RedditConfig    `toml:"reddit"`
	Vendor      VendorConfig    `toml:"vendor"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Quota       QuotaConfig     `toml:"quota"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// SearchConfig configures the web-search provider client.
type SearchConfig struct {
	Endpoint       string  `toml:"endpoint"`
	APIKey         string  `toml:"api_key"`
	Pages          int     `toml:"pages"`           // pages fetched per query variant
	DateRestrict   string  `toml:"date_restrict"`   // e.g. "m6" for the last six months
	RatePerSecond  float64 `toml:"rate_per_second"` // client-side rate limit
	RequestTimeout string  `toml:"request_timeout"` // per-call timeout, e.g. "10s"
}

// RedditConfig configures the OAuth client-credentials Reddit client.
type RedditConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	UserAgent    string `toml:"user_agent"`
	PostLimit    int    `toml:"post_limit"`
}

// VendorConfig configures manufacturer security-bulletin fetching.
type VendorConfig struct {
	Enabled        bool   `toml:"enabled"`
	RequestTimeout string `toml:"request_timeout"`
	MaxContentLen  int    `toml:"max_content_len"` // bulletin markdown cap in characters
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// LLMConfig selects the default provider and fallback behavior.
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"omitempty,oneof=claude gemini"`
	Enabled         bool   `toml:"enabled"`
}

// PipelineConfig holds the tunable constants of the relevance and evidence
// pipeline. The defaults are empirically chosen values carried over from
// production behavior; they are configuration, not algorithmic constraints,
// and should be recalibrated against a labeled dataset when one exists.
type PipelineConfig struct {
	MinSnippetLen      int     `toml:"min_snippet_len"`      // evidence length-gate lower bound, inclusive
	MaxSnippetLen      int     `toml:"max_snippet_len"`      // evidence length-gate upper bound, inclusive
	ExactMatchBonus    float64 `toml:"exact_match_bonus"`    // relevance bonus per exact-word title occurrence
	MaxResults         int     `toml:"max_results"`          // filtered result cap, applied after ranking
	MaxQueryStrategies int     `toml:"max_query_strategies"` // phrasing-strategy cap per pipeline run
	MaxEvidence        int     `toml:"max_evidence"`         // evidence snippets handed to prompt assembly
	SearchTimeout      string  `toml:"search_timeout"`       // per search call timeout, e.g. "10s"
	CacheStaleness     string  `toml:"cache_staleness"`      // advice cache reuse window, e.g. "6h"
}

type QuotaConfig struct {
	DailyLimit int `toml:"daily_limit" validate:"min=0"`
}

// SchedulerConfig holds cron expressions for the built-in jobs.
type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`
	QuotaResetCron  string `toml:"quota_reset_cron"`
	CacheSweepCron  string `toml:"cache_sweep_cron"`
	BulletinRefresh string `toml:"bulletin_refresh_cron"`
}

// NewDefaultConfig returns a Config with all defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/updatescout",
			},
		},
		Search: SearchConfig{
			Endpoint:       "https://google.serper.dev/search",
			Pages:          1,
			DateRestrict:   "m6",
			RatePerSecond:  2,
			RequestTimeout: "10s",
		},
		Reddit: RedditConfig{
			UserAgent: "updatescout/" + Version,
			PostLimit: 25,
		},
		Vendor: VendorConfig{
			Enabled:        true,
			RequestTimeout: "15s",
			MaxContentLen:  4000,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2048,
			Temperature: 0.3,
			Timeout:     "60s",
		},
		LLM: LLMConfig{
			DefaultProvider: "claude",
			Enabled:         true,
		},
		Pipeline: PipelineConfig{
			MinSnippetLen:      10,
			MaxSnippetLen:      350,
			ExactMatchBonus:    0.2,
			MaxResults:         100,
			MaxQueryStrategies: 6,
			MaxEvidence:        15,
			SearchTimeout:      "10s",
			CacheStaleness:     "6h",
		},
		Quota: QuotaConfig{
			DailyLimit: 10,
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			QuotaResetCron:  "0 0 * * *",
			CacheSweepCron:  "30 * * * *",
			BulletinRefresh: "0 */6 * * *",
		},
	}
}

// LoadFromFiles loads configuration from defaults, then each TOML file in
// order (later files override earlier ones), then environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies UPDATESCOUT_* environment variables on top of
// file configuration. Env always wins over files.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("UPDATESCOUT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("UPDATESCOUT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("UPDATESCOUT_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if key := os.Getenv("UPDATESCOUT_SEARCH_API_KEY"); key != "" {
		config.Search.APIKey = key
	}
	if key := os.Getenv("SERPER_API_KEY"); key != "" && config.Search.APIKey == "" {
		config.Search.APIKey = key
	}
	if id := os.Getenv("UPDATESCOUT_REDDIT_CLIENT_ID"); id != "" {
		config.Reddit.ClientID = id
	}
	if secret := os.Getenv("UPDATESCOUT_REDDIT_CLIENT_SECRET"); secret != "" {
		config.Reddit.ClientSecret = secret
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if limit := os.Getenv("UPDATESCOUT_DAILY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			config.Quota.DailyLimit = n
		}
	}
}

// Validate checks structural validity: struct tags, duration fields, and
// cron expressions.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"search.request_timeout":   c.Search.RequestTimeout,
		"vendor.request_timeout":   c.Vendor.RequestTimeout,
		"claude.timeout":           c.Claude.Timeout,
		"pipeline.search_timeout":  c.Pipeline.SearchTimeout,
		"pipeline.cache_staleness": c.Pipeline.CacheStaleness,
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", field, err)
		}
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	crons := map[string]string{
		"scheduler.quota_reset_cron":      c.Scheduler.QuotaResetCron,
		"scheduler.cache_sweep_cron":      c.Scheduler.CacheSweepCron,
		"scheduler.bulletin_refresh_cron": c.Scheduler.BulletinRefresh,
	}
	for field, expr := range crons {
		if expr == "" {
			continue
		}
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("invalid cron expression for %s: %w", field, err)
		}
	}

	return nil
}

// SearchTimeout returns the parsed per-call search timeout.
func (c *Config) SearchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.SearchTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CacheStaleness returns the parsed advice-cache reuse window.
func (c *Config) CacheStaleness() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.CacheStaleness)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}
