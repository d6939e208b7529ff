// Package storage provides the key-value backends the holiday cache is kept in.
package storage

import (
	"context"
	"strings"
)

// Store is a byte-valued key-value store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

type notFoundError struct{}

func (notFoundError) Error() string  { return "key not found" }
func (notFoundError) NotFound() bool { return true }

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound error = notFoundError{}

// normalizeKey trims surrounding whitespace so equivalent keys collide
func normalizeKey(key string) string {
	return strings.TrimSpace(key)
}
