package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

// Service enforces per-user daily request quotas. Windows roll over lazily
// on access and eagerly via the scheduler's reset job; both paths key off
// WindowStart truncated to midnight UTC.
type Service struct {
	storage    interfaces.QuotaStorage
	dailyLimit int
	logger     arbor.ILogger
}

// NewService creates a quota service. dailyLimit <= 0 disables enforcement.
func NewService(storage interfaces.QuotaStorage, dailyLimit int, logger arbor.ILogger) *Service {
	return &Service{
		storage:    storage,
		dailyLimit: dailyLimit,
		logger:     logger,
	}
}

// Consume records one request for the user. Returns ErrQuotaExceeded when
// the user has exhausted today's window.
func (s *Service) Consume(ctx context.Context, userID string) error {
	if s.dailyLimit <= 0 {
		return nil
	}

	today := windowStart(time.Now())

	quota, err := s.storage.Get(ctx, userID)
	if errors.Is(err, interfaces.ErrQuotaNotFound) {
		quota = &models.UserQuota{
			UserID:      userID,
			Limit:       s.dailyLimit,
			WindowStart: today,
		}
	} else if err != nil {
		return fmt.Errorf("failed to load quota for %s: %w", userID, err)
	}

	// Lazy rollover when the stored window is stale.
	if quota.WindowStart.Before(today) {
		quota.Used = 0
		quota.WindowStart = today
	}
	quota.Limit = s.dailyLimit

	if quota.Exhausted() {
		s.logger.Info().
			Str("user_id", userID).
			Int("used", quota.Used).
			Int("limit", quota.Limit).
			Msg("User quota exhausted")
		return interfaces.ErrQuotaExceeded
	}

	quota.Used++
	if err := s.storage.Upsert(ctx, quota); err != nil {
		return fmt.Errorf("failed to persist quota for %s: %w", userID, err)
	}
	return nil
}

// Remaining reports how many requests the user has left today.
func (s *Service) Remaining(ctx context.Context, userID string) (int, error) {
	if s.dailyLimit <= 0 {
		return -1, nil
	}

	quota, err := s.storage.Get(ctx, userID)
	if errors.Is(err, interfaces.ErrQuotaNotFound) {
		return s.dailyLimit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load quota for %s: %w", userID, err)
	}

	if quota.WindowStart.Before(windowStart(time.Now())) {
		return s.dailyLimit, nil
	}
	remaining := s.dailyLimit - quota.Used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ResetAll zeroes all stored quotas for a fresh window. Called by the
// scheduler's daily job.
func (s *Service) ResetAll(ctx context.Context) error {
	count, err := s.storage.ResetAll(ctx, windowStart(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to reset quotas: %w", err)
	}
	s.logger.Info().Int("count", count).Msg("Daily quota reset completed")
	return nil
}

// windowStart truncates a time to midnight UTC.
func windowStart(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
