package holidays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// CacheKeyPrefix prefixes every cache key
	CacheKeyPrefix = "canadian_holidays_"

	// DefaultRetention is how long a cached list stays fresh
	DefaultRetention = 24 * time.Hour
)

// Cache is the key-value store the provider keeps resolved lists in.
// Get returns an error wrapping a not-found sentinel on a miss; the provider
// treats every Get error as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Source is the upstream holiday data source
type Source interface {
	FederalHolidays(ctx context.Context, year int) ([]Holiday, error)
	Provinces(ctx context.Context) ([]Province, error)
}

// cacheEntry is the stored envelope; Timestamp is epoch milliseconds
type cacheEntry struct {
	Data      []Holiday `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

// Provider resolves holiday lists for a (year, province) pair
type Provider struct {
	source    Source
	cache     Cache
	logger    logrus.FieldLogger
	retention time.Duration
	now       func() time.Time
}

// ProviderOption configures the Provider
type ProviderOption func(*Provider)

// WithRetention sets how long cached lists stay fresh
func WithRetention(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.retention = d
	}
}

// WithClock replaces the wall clock, used for cache ageing
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

// WithLogger sets a logger
func WithLogger(logger logrus.FieldLogger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a provider reading from source and caching in cache
func NewProvider(source Source, cache Cache, opts ...ProviderOption) *Provider {
	p := &Provider{
		source:    source,
		cache:     cache,
		logger:    logrus.StandardLogger(),
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CacheKey returns the cache key for a (year, province) pair
func CacheKey(year int, province string) string {
	return fmt.Sprintf("%s%d_%s", CacheKeyPrefix, year, province)
}

// Resolve returns the merged federal and provincial holidays of province in
// year. A fresh cache entry is returned without touching the network.
func (p *Provider) Resolve(ctx context.Context, year int, province string) (List, error) {
	if province == "" {
		province = DefaultProvince
	}
	key := CacheKey(year, province)
	log := p.logger.WithFields(logrus.Fields{"year": year, "province": province})

	if cached, ok := p.readCache(ctx, key, log); ok {
		log.Debug("Using cached holidays")
		return cached, nil
	}

	var (
		federal   []Holiday
		provinces []Province
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		federal, err = p.source.FederalHolidays(gctx, year)
		return err
	})
	g.Go(func() error {
		var err error
		provinces, err = p.source.Provinces(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to fetch holidays")
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}

	var provincial []Holiday
	for _, pr := range provinces {
		if pr.ID == province {
			provincial = pr.Holidays
			break
		}
	}
	if provincial == nil {
		log.Debug("Province not found upstream, using federal holidays only")
	}

	list := Merge(FilterYear(federal, year), FilterYear(provincial, year))
	p.writeCache(ctx, key, list, log)

	log.WithField("count", len(list)).Info("Resolved holidays")
	return list, nil
}

// readCache returns the cached list for key if present, parseable and fresh
func (p *Provider) readCache(ctx context.Context, key string, log logrus.FieldLogger) (List, bool) {
	if p.cache == nil {
		return nil, false
	}
	raw, err := p.cache.Get(ctx, key)
	if err != nil {
		if !isNotFound(err) {
			log.WithError(err).Warn("Failed to read cache")
		}
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.WithError(err).Warn("Failed to read cache")
		return nil, false
	}

	age := p.now().Sub(time.UnixMilli(entry.Timestamp))
	if age >= p.retention {
		return nil, false
	}

	// Entries written before classification was stored carry no kind
	list := List(entry.Data)
	for i := range list {
		if list[i].Kind == "" {
			list[i].Kind = Classify(list[i])
		}
	}
	return list, true
}

// writeCache stores list under key; failures are logged and ignored
func (p *Provider) writeCache(ctx context.Context, key string, list List, log logrus.FieldLogger) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(cacheEntry{
		Data:      list,
		Timestamp: p.now().UnixMilli(),
	})
	if err != nil {
		log.WithError(err).Warn("Failed to cache data")
		return
	}
	if err := p.cache.Put(ctx, key, data); err != nil {
		log.WithError(err).Warn("Failed to cache data")
	}
}

// notFound is implemented by storage miss errors
type notFound interface {
	NotFound() bool
}

func isNotFound(err error) bool {
	var nf notFound
	return errors.As(err, &nf) && nf.NotFound()
}
