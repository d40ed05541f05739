package interfaces

import (
	"context"
	"time"

	"github.com/omerch/updatescout/internal/models"
)

// KeyValuePair is a stored configuration/secret value. Keys are normalized
// to lowercase for case-insensitive lookup.
type KeyValuePair struct {
	Key         string `badgerhold:"key"`
	Value       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KeyValueStorage defines key/value persistence for API keys and settings.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// QuotaStorage persists per-user daily quotas.
type QuotaStorage interface {
	Get(ctx context.Context, userID string) (*models.UserQuota, error)
	Upsert(ctx context.Context, quota *models.UserQuota) error
	ResetAll(ctx context.Context, windowStart time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// AdviceStorage caches recent pipeline outputs keyed by device and version,
// so repeat questions within the staleness window skip the search fan-out.
type AdviceStorage interface {
	Get(ctx context.Context, deviceKey, versionText string) (*models.UpdateAdvice, error)
	Put(ctx context.Context, advice *models.UpdateAdvice) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// StorageManager aggregates the storage interfaces behind one lifecycle.
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	QuotaStorage() QuotaStorage
	AdviceStorage() AdviceStorage
	Close() error
}
