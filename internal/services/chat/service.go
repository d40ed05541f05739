package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
	"github.com/omerch/updatescout/internal/services/advisor"
	"github.com/omerch/updatescout/internal/services/quota"
)

var _ interfaces.ChatService = (*Service)(nil)

const quotaExhaustedReply = "You have used all of your questions for today. Your quota resets at midnight UTC."

// Service handles inbound chat messages end to end: quota enforcement,
// advisory pipeline invocation, and reply formatting.
type Service struct {
	advisor   *advisor.Service
	quota     *quota.Service
	transport interfaces.ChatTransport
	logger    arbor.ILogger
}

// NewService creates the chat message handler.
func NewService(advisorService *advisor.Service, quotaService *quota.Service, transport interfaces.ChatTransport, logger arbor.ILogger) *Service {
	return &Service{
		advisor:   advisorService,
		quota:     quotaService,
		transport: transport,
		logger:    logger,
	}
}

// HandleMessage answers one inbound message. Quota is charged before the
// pipeline runs; a quota-exhausted user gets a reply, not an error.
func (s *Service) HandleMessage(ctx context.Context, msg interfaces.IncomingMessage) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return s.transport.Send(ctx, msg.ChatID, "Tell me your device and the update you are considering, for example: \"Should I update my Galaxy S24 Ultra to One UI 7?\"")
	}

	if err := s.quota.Consume(ctx, msg.UserID); err != nil {
		if errors.Is(err, interfaces.ErrQuotaExceeded) {
			s.logger.Info().Str("user_id", msg.UserID).Msg("Quota exhausted, declining question")
			return s.transport.Send(ctx, msg.ChatID, quotaExhaustedReply)
		}
		return fmt.Errorf("quota check failed: %w", err)
	}

	advice, err := s.advisor.Advise(ctx, text)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", msg.UserID).Msg("Advisory pipeline failed")
		return s.transport.Send(ctx, msg.ChatID, "Something went wrong while researching that update. Please try again in a few minutes.")
	}

	return s.transport.Send(ctx, msg.ChatID, formatReply(advice))
}

// formatReply renders the advice for chat delivery: recommendation first,
// then a compact source list.
func formatReply(advice *models.UpdateAdvice) string {
	var b strings.Builder

	b.WriteString(advice.Recommendation)

	if advice.Limited {
		b.WriteString("\n\n(Limited information was available for this device and version.)")
	}

	if n := len(advice.Sources); n > 0 {
		b.WriteString("\n\nSources:\n")
		max := n
		if max > 5 {
			max = 5
		}
		for _, src := range advice.Sources[:max] {
			fmt.Fprintf(&b, "- %s\n", src.URL)
		}
	}

	return b.String()
}
