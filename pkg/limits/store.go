package limits

import (
	"fmt"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/limits/storage"
)

// NewStore builds the quota store selected by cfg.
func NewStore(cfg config.QuotaStoreConfig) (storage.Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return storage.NewMemoryStore(), nil
	case BackendSQLite:
		s, err := storage.NewSQLiteStoreWithConfig(storage.SQLiteStoreConfig{
			DBPath:      cfg.SQLitePath,
			BusyTimeout: cfg.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite quota store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func backendName(s storage.Store) string {
	switch s.(type) {
	case *storage.MemoryStore:
		return BackendMemory
	case *storage.SQLiteStore:
		return BackendSQLite
	default:
		return "custom"
	}
}
