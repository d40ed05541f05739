package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/interfaces"
)

// Service implements interfaces.LLMService over the configured hosted
// provider. Clients are created lazily; the advisor supplies the fallback
// path when calls fail, so errors here are returned, not swallowed.
type Service struct {
	provider     ProviderType
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	kvStorage    interfaces.KeyValueStorage
	logger       arbor.ILogger
	retry        *RetryConfig

	geminiClient *genai.Client
	claudeClient *anthropic.Client
}

// NewService creates an LLM service for the configured default provider.
func NewService(cfg *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*Service, error) {
	provider := ProviderType(cfg.LLM.DefaultProvider)
	switch provider {
	case ProviderClaude, ProviderGemini:
	case "":
		provider = ProviderClaude
	default:
		return nil, fmt.Errorf("unsupported llm provider %q: must be 'claude' or 'gemini'", cfg.LLM.DefaultProvider)
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	return &Service{
		provider:     provider,
		geminiConfig: &cfg.Gemini,
		claudeConfig: &cfg.Claude,
		kvStorage:    kvStorage,
		logger:       logger,
		retry:        NewDefaultRetryConfig(),
	}, nil
}

// ProviderName reports the backing provider.
func (s *Service) ProviderName() string {
	return string(s.provider)
}

// GenerateAnalysis sends the prompt messages and returns the model's text.
func (s *Service) GenerateAnalysis(ctx context.Context, messages []interfaces.Message) (string, error) {
	switch s.provider {
	case ProviderClaude:
		return s.generateWithClaude(ctx, messages)
	default:
		return s.generateWithGemini(ctx, messages)
	}
}

// resolveAPIKey checks the KV store first, then the config value.
func (s *Service) resolveAPIKey(ctx context.Context, kvKey, configValue string) (string, error) {
	if s.kvStorage != nil {
		if value, err := s.kvStorage.Get(ctx, kvKey); err == nil && value != "" {
			return value, nil
		}
	}
	if configValue != "" {
		return configValue, nil
	}
	return "", fmt.Errorf("no API key found for %s", kvKey)
}

func (s *Service) getClaudeClient(ctx context.Context) (*anthropic.Client, error) {
	if s.claudeClient != nil {
		return s.claudeClient, nil
	}
	apiKey, err := s.resolveAPIKey(ctx, "anthropic_api_key", s.claudeConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Anthropic API key: %w", err)
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	s.claudeClient = &client
	return s.claudeClient, nil
}

func (s *Service) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	if s.geminiClient != nil {
		return s.geminiClient, nil
	}
	apiKey, err := s.resolveAPIKey(ctx, "gemini_api_key", s.geminiConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Gemini API key: %w", err)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.geminiClient = client
	return client, nil
}

func (s *Service) generateWithClaude(ctx context.Context, messages []interfaces.Message) (string, error) {
	client, err := s.getClaudeClient(ctx)
	if err != nil {
		return "", err
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages: %w", err)
	}

	maxTokens := s.claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.claudeConfig.Model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}
	if s.claudeConfig.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.claudeConfig.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	var resp *anthropic.Message
	var apiErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}
		if attempt == s.retry.MaxRetries {
			break
		}

		backoff := s.retry.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		if !IsRateLimitError(apiErr) {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return "", fmt.Errorf("Claude API call failed after %d retries: %w", s.retry.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}
	return text.String(), nil
}

func (s *Service) generateWithGemini(ctx context.Context, messages []interfaces.Message) (string, error) {
	client, err := s.getGeminiClient(ctx)
	if err != nil {
		return "", err
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages: %w", err)
	}

	config := &genai.GenerateContentConfig{}
	if s.geminiConfig.Temperature > 0 {
		config.Temperature = genai.Ptr(s.geminiConfig.Temperature)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	var resp *genai.GenerateContentResponse
	var apiErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Models.GenerateContent(ctx, s.geminiConfig.Model, contents, config)
		if apiErr == nil {
			break
		}
		if attempt == s.retry.MaxRetries {
			break
		}

		backoff := s.retry.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		if !IsRateLimitError(apiErr) {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return "", fmt.Errorf("Gemini API call failed after %d retries: %w", s.retry.MaxRetries, apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	responseText := resp.Text()
	if responseText == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}
	return responseText, nil
}

// Close releases provider clients.
func (s *Service) Close() error {
	s.geminiClient = nil
	s.claudeClient = nil
	return nil
}

// Compile-time assertion: Service implements the LLMService interface
var _ interfaces.LLMService = (*Service)(nil)
