package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

// QuotaStorage implements the QuotaStorage interface for Badger
type QuotaStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQuotaStorage creates a new QuotaStorage instance
func NewQuotaStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QuotaStorage {
	return &QuotaStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the quota record for a user
func (s *QuotaStorage) Get(ctx context.Context, userID string) (*models.UserQuota, error) {
	var quota models.UserQuota
	err := s.db.Store().Get(userID, &quota)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrQuotaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}
	return &quota, nil
}

// Upsert inserts or replaces the quota record for a user
func (s *QuotaStorage) Upsert(ctx context.Context, quota *models.UserQuota) error {
	quota.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(quota.UserID, *quota); err != nil {
		return fmt.Errorf("failed to upsert quota: %w", err)
	}
	return nil
}

// ResetAll zeroes usage for every quota record and sets a new window start.
// Returns the number of records reset.
func (s *QuotaStorage) ResetAll(ctx context.Context, windowStart time.Time) (int, error) {
	var quotas []models.UserQuota
	if err := s.db.Store().Find(&quotas, nil); err != nil {
		return 0, fmt.Errorf("failed to list quotas: %w", err)
	}

	reset := 0
	for i := range quotas {
		quotas[i].Used = 0
		quotas[i].WindowStart = windowStart
		quotas[i].UpdatedAt = time.Now()
		if err := s.db.Store().Upsert(quotas[i].UserID, quotas[i]); err != nil {
			s.logger.Warn().Err(err).Str("user_id", quotas[i].UserID).Msg("Failed to reset user quota")
			continue
		}
		reset++
	}

	return reset, nil
}

// Count returns the number of stored quota records
func (s *QuotaStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.UserQuota{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count quotas: %w", err)
	}
	return int(count), nil
}
