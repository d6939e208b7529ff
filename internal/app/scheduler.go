package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
)

const (
	// warmConcurrency bounds parallel resolves during a warm-up
	warmConcurrency = 4

	// WarmJobTimeout bounds a scheduled warm-up run
	WarmJobTimeout = 5 * time.Minute
)

// WarmResult summarises a warm-up run
type WarmResult struct {
	Year   int               `json:"year"`
	Warmed []string          `json:"warmed"`
	Failed map[string]string `json:"failed,omitempty"`
}

// WarmYear resolves every province for year through resolver. Failures are
// collected per province; the run never stops early.
func WarmYear(ctx context.Context, resolver holidays.Resolver, year int) WarmResult {
	result := WarmResult{Year: year, Warmed: []string{}}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(warmConcurrency)

	for _, code := range holidays.ProvinceCodes() {
		code := code
		g.Go(func() error {
			_, err := resolver.Resolve(ctx, year, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if result.Failed == nil {
					result.Failed = map[string]string{}
				}
				result.Failed[code] = err.Error()
				return nil
			}
			result.Warmed = append(result.Warmed, code)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Warmed)
	return result
}

// StartScheduler schedules the daily warm-up of the current year. The
// returned cron is already running; stop it on shutdown.
func StartScheduler(cfg SchedulerConfig, resolver holidays.Resolver) (*cron.Cron, error) {
	c := cron.New()

	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), WarmJobTimeout)
		defer cancel()

		year := Now().Year()
		Logger.WithField("year", year).Info("Starting holiday cache warm-up")
		result := WarmYear(ctx, resolver, year)
		entry := Logger.WithField("year", year).WithField("warmed", len(result.Warmed))
		if len(result.Failed) > 0 {
			entry.WithField("failed", result.Failed).Warn("Holiday cache warm-up incomplete")
			return
		}
		entry.Info("Holiday cache warm-up finished")
	}

	if _, err := c.AddFunc(cfg.Schedule, job); err != nil {
		return nil, fmt.Errorf("failed to schedule warm-up %q: %w", cfg.Schedule, err)
	}

	c.Start()
	if cfg.OnStart {
		go job()
	}
	Logger.WithField("schedule", cfg.Schedule).Info("Scheduled holiday cache warm-up")
	return c, nil
}
