package database

import (
	"fmt"
	"os"

	"winrecent/internal/config"
	"winrecent/internal/recent"
)

// NewStoreFromConfig opens the history store. kind is "sqlite" for the file
// under the data directory or "memory" for a throwaway store.
func NewStoreFromConfig(kind string, cfg *config.Config, prober recent.TargetProber) (*SQLiteStore, error) {
	switch kind {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(cfg.StorePath(), prober)
	case "memory":
		return NewSQLiteStore(":memory:", prober)
	default:
		return nil, fmt.Errorf("unknown store type: %s", kind)
	}
}
