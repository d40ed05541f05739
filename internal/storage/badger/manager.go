package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	kv     interfaces.KeyValueStorage
	quota  interfaces.QuotaStorage
	advice interfaces.AdviceStorage
	logger arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		quota:  NewQuotaStorage(db, logger),
		advice: NewAdviceStorage(db, logger),
		logger: logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// QuotaStorage returns the Quota storage interface
func (m *Manager) QuotaStorage() interfaces.QuotaStorage {
	return m.quota
}

// AdviceStorage returns the Advice storage interface
func (m *Manager) AdviceStorage() interfaces.AdviceStorage {
	return m.advice
}

// Close closes the underlying database
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing Badger storage manager")
	return m.db.Close()
}
