package interfaces

import "context"

// Message represents a single turn in an LLM conversation.
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService is the language-model collaborator: text in, text out.
// Implementations wrap a hosted provider (Claude, Gemini). Callers must
// always be able to proceed without it; a failed or unconfigured call is
// degraded to a deterministic fallback summary by the advisor, never
// propagated to the user as an error.
type LLMService interface {
	// GenerateAnalysis sends the assembled prompt and returns the model's
	// text response.
	GenerateAnalysis(ctx context.Context, messages []Message) (string, error)

	// ProviderName reports which backing provider handled the call.
	ProviderName() string

	// Close releases any underlying clients.
	Close() error
}
