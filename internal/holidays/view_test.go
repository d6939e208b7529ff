package holidays

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolveResult struct {
	list List
	err  error
}

// gatedResolver blocks every call until the test releases it
type gatedResolver struct {
	mu    sync.Mutex
	gates map[string]chan resolveResult
	calls chan string
}

func newGatedResolver() *gatedResolver {
	return &gatedResolver{
		gates: map[string]chan resolveResult{},
		calls: make(chan string, 16),
	}
}

func (r *gatedResolver) gate(key string) chan resolveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.gates[key]
	if !ok {
		ch = make(chan resolveResult, 1)
		r.gates[key] = ch
	}
	return ch
}

func (r *gatedResolver) Resolve(ctx context.Context, year int, province string) (List, error) {
	key := CacheKey(year, province)
	r.calls <- key
	res := <-r.gate(key)
	return res.list, res.err
}

func (r *gatedResolver) release(key string, list List, err error) {
	r.gate(key) <- resolveResult{list: list, err: err}
}

func (r *gatedResolver) waitCall(t *testing.T) string {
	t.Helper()
	select {
	case key := <-r.calls:
		return key
	case <-time.After(2 * time.Second):
		t.Fatal("resolver was not called")
		return ""
	}
}

// staticResolver answers immediately
type staticResolver struct {
	list List
	err  error
	n    int
}

func (r *staticResolver) Resolve(ctx context.Context, year int, province string) (List, error) {
	r.n++
	return r.list, r.err
}

func list2024() List {
	federal, provinces := ontario2024()
	return Merge(FilterYear(federal, 2024), FilterYear(provinces[0].Holidays, 2024))
}

func TestViewInitialState(t *testing.T) {
	v := NewView(&staticResolver{}, 2024, "")
	st := v.State()
	assert.Equal(t, 2024, st.Year)
	assert.Equal(t, "ON", st.Province)
	assert.NotNil(t, st.Holidays)
	assert.Empty(t, st.Holidays)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestViewSelectAdoptsResult(t *testing.T) {
	r := &staticResolver{list: list2024()}
	v := NewView(r, 2023, "ON")

	require.NoError(t, v.Select(context.Background(), 2024, "ON"))
	assert.Len(t, v.Holidays(), 3)
	assert.Equal(t, 2024, v.State().Year)
	assert.False(t, v.Loading())
}

func TestViewErrorKeepsPreviousHolidays(t *testing.T) {
	r := &staticResolver{list: list2024()}
	v := NewView(r, 2024, "ON")
	ctx := context.Background()
	require.NoError(t, v.Select(ctx, 2024, "ON"))

	r.list, r.err = nil, errors.New("network down")
	err := v.Refetch(ctx)
	require.Error(t, err)

	st := v.State()
	assert.Len(t, st.Holidays, 3)
	assert.EqualError(t, st.Err, "network down")
	assert.False(t, st.Loading)

	// a later success clears the error
	r.list, r.err = list2024(), nil
	require.NoError(t, v.Refetch(ctx))
	assert.NoError(t, v.Err())
	assert.Equal(t, 3, r.n)
}

func TestViewLoadingWhileInFlight(t *testing.T) {
	r := newGatedResolver()
	v := NewView(r, 2024, "ON")

	done := make(chan error, 1)
	go func() { done <- v.Refetch(context.Background()) }()
	key := r.waitCall(t)
	assert.Equal(t, "canadian_holidays_2024_ON", key)
	assert.True(t, v.Loading())

	r.release(key, list2024(), nil)
	require.NoError(t, <-done)
	assert.False(t, v.Loading())
	assert.Len(t, v.Holidays(), 3)
}

func TestViewDiscardsStaleResult(t *testing.T) {
	r := newGatedResolver()
	v := NewView(r, 2024, "ON")
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- v.Select(ctx, 2024, "ON") }()
	onKey := r.waitCall(t)

	second := make(chan error, 1)
	go func() { second <- v.Select(ctx, 2024, "QC") }()
	qcKey := r.waitCall(t)

	quebec := List{{Date: "2024-06-24", NameEn: "Saint-Jean-Baptiste Day", Kind: KindStatutory}}

	// the newer selection completes first, then the old one arrives late
	r.release(qcKey, quebec, nil)
	require.NoError(t, <-second)
	assert.False(t, v.Loading())

	r.release(onKey, list2024(), nil)
	require.NoError(t, <-first)

	st := v.State()
	assert.Equal(t, "QC", st.Province)
	assert.Equal(t, quebec, st.Holidays)
	assert.False(t, st.Loading)
}

func TestViewStaleErrorIsIgnored(t *testing.T) {
	r := newGatedResolver()
	v := NewView(r, 2024, "ON")
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- v.Select(ctx, 2023, "ON") }()
	oldKey := r.waitCall(t)

	second := make(chan error, 1)
	go func() { second <- v.Select(ctx, 2024, "ON") }()
	newKey := r.waitCall(t)

	r.release(oldKey, nil, errors.New("timeout"))
	assert.Error(t, <-first)
	assert.NoError(t, v.Err())
	assert.True(t, v.Loading(), "latest call is still running")

	r.release(newKey, list2024(), nil)
	require.NoError(t, <-second)
	assert.Len(t, v.Holidays(), 3)
	assert.NoError(t, v.Err())
}

func TestViewIsHolidayMatchesLookup(t *testing.T) {
	v := NewView(&staticResolver{list: list2024()}, 2024, "ON")
	require.NoError(t, v.Refetch(context.Background()))

	for d := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		_, found := v.HolidayForDate(d)
		assert.Equal(t, found, v.IsHoliday(d), d.Format(DateLayout))
	}

	h, ok := v.HolidayForDate(time.Date(2024, 2, 19, 15, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "Family Day", h.NameEn)
	assert.False(t, v.IsHoliday(time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)))
}
