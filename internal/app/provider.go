package app

import (
	"fmt"
	"path/filepath"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
	"github.com/klabast/wb-services/canada-holidays/internal/storage"
)

// Default on-disk cache locations per backend
var defaultCachePaths = map[string]string{
	storage.BackendFile:   filepath.Join("data", "cache"),
	storage.BackendBadger: filepath.Join("data", "badger"),
	storage.BackendSQLite: filepath.Join("data", "holidays.db"),
}

// NewProvider opens the configured cache and builds the holiday provider.
// The returned store must be closed by the caller.
func NewProvider(cfg *Config) (*holidays.Provider, storage.Store, error) {
	timeout, err := cfg.Upstream.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	retention, err := cfg.Cache.RetentionDuration()
	if err != nil {
		return nil, nil, err
	}

	storeCfg := cfg.Cache.StorageConfig()
	if storeCfg.Path == "" {
		storeCfg.Path = defaultCachePaths[storeCfg.Backend]
	}
	store, err := storage.Open(storeCfg, Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	client := holidays.NewClient(
		holidays.WithBaseURL(cfg.Upstream.BaseURL),
		holidays.WithTimeout(timeout),
		holidays.WithRateLimit(cfg.Upstream.RateLimit),
		holidays.WithClientLogger(Logger),
	)
	provider := holidays.NewProvider(client, store,
		holidays.WithRetention(retention),
		holidays.WithLogger(Logger),
	)

	Logger.WithField("backend", storeCfg.Backend).WithField("path", storeCfg.Path).Debug("Holiday cache opened")
	return provider, store, nil
}
