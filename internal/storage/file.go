package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const (
	fileSuffix      = ".json"
	tmpSuffix       = ".tmp.json"
	filePermissions = 0644
)

// FileStore keeps one JSON file per key on a billy filesystem
type FileStore struct {
	fs billy.Filesystem
	mu sync.Mutex
}

// NewFileStore creates a file store rooted at dir on the OS filesystem
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return NewFileStoreFS(osfs.New(dir)), nil
}

// NewFileStoreFS creates a file store on an existing billy filesystem
func NewFileStoreFS(fs billy.Filesystem) *FileStore {
	return &FileStore{fs: fs}
}

// fileName maps a key to a safe file name
func fileName(key string) string {
	var b strings.Builder
	for _, r := range normalizeKey(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + fileSuffix
}

// Get reads the file stored for key
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f, err := s.fs.Open(fileName(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return data, nil
}

// Put writes value to a temp file first and renames it over the key's file
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fileName(key)
	tmp := strings.TrimSuffix(name, fileSuffix) + tmpSuffix

	if err := util.WriteFile(s.fs, tmp, value, filePermissions); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		// some filesystems refuse to rename over an existing file
		if rmErr := s.fs.Remove(name); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("failed to replace cache file: %w", err)
		}
		if err := s.fs.Rename(tmp, name); err != nil {
			return fmt.Errorf("failed to replace cache file: %w", err)
		}
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}
