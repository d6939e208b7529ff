package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config selects and locates a backend
type Config struct {
	Backend string
	Path    string
}

// Open creates the store named by cfg.Backend
func Open(cfg Config, logger logrus.FieldLogger) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(cfg.Path)
	case BackendBadger:
		return NewBadgerStore(cfg.Path, logger)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
