package storage

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Entries never expire here;
// freshness is decided by the reader.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a value by key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.items.Get(normalizeKey(key))
	if !ok {
		return nil, ErrNotFound
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

// Put inserts or replaces a value
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items.Set(normalizeKey(key), stored, gocache.NoExpiration)
	return nil
}

// Len returns the number of stored keys
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
