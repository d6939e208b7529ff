package holidays

import (
	"context"
	"sync"
	"time"
)

// Resolver is implemented by Provider
type Resolver interface {
	Resolve(ctx context.Context, year int, province string) (List, error)
}

// State is a snapshot of a View
type State struct {
	Year     int
	Province string
	Holidays List
	Loading  bool
	Err      error
}

// View tracks the holidays of one consumer's current (year, province)
// selection. Every resolve gets a sequence number and only the result of the
// latest issued call is adopted, so a slow response for an old selection
// never overwrites a newer one.
type View struct {
	resolver Resolver

	mu       sync.RWMutex
	year     int
	province string
	holidays List
	err      error
	issued   uint64
	inFlight uint64
}

// NewView creates a view for year and province without resolving
func NewView(resolver Resolver, year int, province string) *View {
	if province == "" {
		province = DefaultProvince
	}
	return &View{
		resolver: resolver,
		year:     year,
		province: province,
		holidays: List{},
	}
}

// Select switches the view to year and province and resolves them
func (v *View) Select(ctx context.Context, year int, province string) error {
	if province == "" {
		province = DefaultProvince
	}
	v.mu.Lock()
	v.year = year
	v.province = province
	v.mu.Unlock()
	return v.resolve(ctx, year, province)
}

// Refetch resolves the current selection again. The cache is still consulted.
func (v *View) Refetch(ctx context.Context) error {
	v.mu.RLock()
	year, province := v.year, v.province
	v.mu.RUnlock()
	return v.resolve(ctx, year, province)
}

func (v *View) resolve(ctx context.Context, year int, province string) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.inFlight = seq
	v.err = nil
	v.mu.Unlock()

	list, err := v.resolver.Resolve(ctx, year, province)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		// superseded by a later call
		return err
	}
	v.inFlight = 0
	if err != nil {
		v.err = err
		return err
	}
	v.holidays = list
	return nil
}

// State returns a snapshot of the view
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return State{
		Year:     v.year,
		Province: v.province,
		Holidays: v.holidays,
		Loading:  v.inFlight != 0,
		Err:      v.err,
	}
}

// Holidays returns the adopted list
func (v *View) Holidays() List {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.holidays
}

// Loading reports whether the latest issued resolve is still running
func (v *View) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.inFlight != 0
}

// Err returns the error of the latest completed resolve, if it failed
func (v *View) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// HolidayForDate returns the holiday on the calendar day of t
func (v *View) HolidayForDate(t time.Time) (Holiday, bool) {
	return v.Holidays().ForDate(t)
}

// IsHoliday reports whether t falls on a holiday
func (v *View) IsHoliday(t time.Time) bool {
	return v.Holidays().IsHoliday(t)
}
