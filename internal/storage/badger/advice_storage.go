package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
)

// storedAdvice wraps an UpdateAdvice with its cache key.
type storedAdvice struct {
	CacheKey string `badgerhold:"key"`
	Advice   models.UpdateAdvice
}

// AdviceStorage caches pipeline outputs keyed by device and version so
// repeat questions inside the staleness window skip the search fan-out.
type AdviceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAdviceStorage creates a new AdviceStorage instance
func NewAdviceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AdviceStorage {
	return &AdviceStorage{
		db:     db,
		logger: logger,
	}
}

func cacheKey(deviceKey, versionText string) string {
	return strings.ToLower(strings.TrimSpace(deviceKey)) + "|" + strings.ToLower(strings.TrimSpace(versionText))
}

// Get retrieves cached advice for a device/version pair
func (s *AdviceStorage) Get(ctx context.Context, deviceKey, versionText string) (*models.UpdateAdvice, error) {
	var stored storedAdvice
	err := s.db.Store().Get(cacheKey(deviceKey, versionText), &stored)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrAdviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached advice: %w", err)
	}
	return &stored.Advice, nil
}

// Put stores advice under its device/version cache key
func (s *AdviceStorage) Put(ctx context.Context, advice *models.UpdateAdvice) error {
	key := cacheKey(advice.Device.DeviceKey, advice.VersionText)
	stored := storedAdvice{
		CacheKey: key,
		Advice:   *advice,
	}
	if err := s.db.Store().Upsert(key, stored); err != nil {
		return fmt.Errorf("failed to cache advice: %w", err)
	}
	return nil
}

// DeleteOlderThan removes cached advice generated before the cutoff.
// Returns the number of entries removed.
func (s *AdviceStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var all []storedAdvice
	if err := s.db.Store().Find(&all, nil); err != nil {
		return 0, fmt.Errorf("failed to list cached advice: %w", err)
	}

	removed := 0
	for _, stored := range all {
		if !stored.Advice.GeneratedAt.Before(cutoff) {
			continue
		}
		if err := s.db.Store().Delete(stored.CacheKey, storedAdvice{}); err != nil {
			s.logger.Warn().Err(err).Str("cache_key", stored.CacheKey).Msg("Failed to delete stale advice")
			continue
		}
		removed++
	}

	return removed, nil
}
