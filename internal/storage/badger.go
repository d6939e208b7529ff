package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

// badgerRecord is the value persisted per key
type badgerRecord struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// BadgerStore keeps values in a Badger database through badgerhold
type BadgerStore struct {
	store  *badgerhold.Store
	logger logrus.FieldLogger
}

// NewBadgerStore opens (or creates) a Badger database at path
func NewBadgerStore(path string, logger logrus.FieldLogger) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.WithField("path", path).Debug("Opening Badger database connection")

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{store: store, logger: logger}, nil
}

// Get retrieves a value by key
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec badgerRecord
	err := s.store.Get(normalizeKey(key), &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return rec.Value, nil
}

// Put inserts or replaces a value
func (s *BadgerStore) Put(ctx context.Context, key string, value []byte) error {
	k := normalizeKey(key)
	rec := badgerRecord{Key: k, Value: value, UpdatedAt: time.Now()}
	if err := s.store.Upsert(k, &rec); err != nil {
		return fmt.Errorf("failed to put key: %w", err)
	}
	return nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
