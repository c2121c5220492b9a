package counts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/calendar-widget-tui/internal/models"
)

var errUnavailable = errors.New("document unavailable")

type fakeSource struct {
	counts models.CountsByDate
	err    error
	delay  time.Duration
	reads  atomic.Int32
	mu     sync.Mutex
}

func (f *fakeSource) Read() (models.CountsByDate, error) {
	f.reads.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.counts.Clone(), nil
}

func (f *fakeSource) set(counts models.CountsByDate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = counts
	f.err = err
}

type fakeFallback struct {
	saved   models.CountsByDate
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeFallback) LoadCounts(context.Context) (models.CountsByDate, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.saved.Clone(), nil
}

func (f *fakeFallback) SaveCounts(_ context.Context, counts models.CountsByDate) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = counts.Clone()
	return nil
}

func TestLoad_FromDocument(t *testing.T) {
	src := &fakeSource{counts: models.CountsByDate{"2023-05-01": 2}}
	fb := &fakeFallback{}
	loader := NewLoader(src, fb)

	res := loader.Load(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, models.OriginDocument, res.Origin)
	assert.Equal(t, 2, res.Counts.Get(2023, 5, 1))
	assert.Equal(t, 1, fb.saves)
	assert.Equal(t, res.Counts, fb.saved)
	assert.False(t, res.LoadedAt.IsZero())
}

func TestLoad_FallsBackToLastGood(t *testing.T) {
	src := &fakeSource{counts: models.CountsByDate{"2023-05-01": 2}}
	loader := NewLoader(src, nil)

	first := loader.Load(context.Background())
	require.Equal(t, models.OriginDocument, first.Origin)

	src.set(nil, errUnavailable)
	res := loader.Load(context.Background())

	assert.Equal(t, models.OriginCache, res.Origin)
	assert.ErrorIs(t, res.Err, errUnavailable)
	assert.Equal(t, 2, res.Counts.Get(2023, 5, 1))
}

func TestLoad_FallsBackToDatabase(t *testing.T) {
	src := &fakeSource{err: errUnavailable}
	fb := &fakeFallback{saved: models.CountsByDate{"2023-05-03": 7}}
	loader := NewLoader(src, fb)

	res := loader.Load(context.Background())

	assert.Equal(t, models.OriginCache, res.Origin)
	assert.Equal(t, 7, res.Counts.Get(2023, 5, 3))

	cached, ok := loader.LastGood()
	require.True(t, ok)
	assert.Equal(t, 7, cached.Get(2023, 5, 3))
}

func TestLoad_EmptyWhenNothingAvailable(t *testing.T) {
	tests := []struct {
		name     string
		fallback Fallback
	}{
		{name: "no fallback", fallback: nil},
		{name: "empty fallback", fallback: &fakeFallback{}},
		{name: "broken fallback", fallback: &fakeFallback{loadErr: errors.New("disk I/O error")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(&fakeSource{err: errUnavailable}, tt.fallback)

			res := loader.Load(context.Background())

			assert.Equal(t, models.OriginEmpty, res.Origin)
			assert.NotNil(t, res.Counts)
			assert.Empty(t, res.Counts)
			assert.ErrorIs(t, res.Err, errUnavailable)
		})
	}
}

func TestLoad_InvalidDocumentUsesCache(t *testing.T) {
	src := &fakeSource{counts: models.CountsByDate{"2023-05-01": 2}}
	loader := NewLoader(src, nil)
	loader.Load(context.Background())

	src.set(models.CountsByDate{"2023-05-01": -4}, nil)
	res := loader.Load(context.Background())

	assert.Equal(t, models.OriginCache, res.Origin)
	assert.ErrorIs(t, res.Err, models.ErrNegativeCount)
	assert.Equal(t, 2, res.Counts.Get(2023, 5, 1))
}

func TestLoad_SaveFailureStillReturnsDocument(t *testing.T) {
	src := &fakeSource{counts: models.CountsByDate{"2023-05-01": 1}}
	loader := NewLoader(src, &fakeFallback{saveErr: errors.New("readonly database")})

	res := loader.Load(context.Background())

	assert.Equal(t, models.OriginDocument, res.Origin)
	assert.NoError(t, res.Err)
}

func TestLoad_NilSource(t *testing.T) {
	loader := NewLoader(nil, nil)

	res := loader.Load(context.Background())

	assert.Equal(t, models.OriginEmpty, res.Origin)
	assert.Error(t, res.Err)
}

func TestLoad_ResultIsACopy(t *testing.T) {
	src := &fakeSource{counts: models.CountsByDate{"2023-05-01": 1}}
	loader := NewLoader(src, nil)

	res := loader.Load(context.Background())
	res.Counts["2023-05-01"] = 99

	cached, ok := loader.LastGood()
	require.True(t, ok)
	assert.Equal(t, 1, cached["2023-05-01"])
}

func TestLoad_ConcurrentCallersShareRead(t *testing.T) {
	src := &fakeSource{
		counts: models.CountsByDate{"2023-05-01": 1},
		delay:  50 * time.Millisecond,
	}
	loader := NewLoader(src, nil)

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = loader.Load(context.Background())
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, models.OriginDocument, res.Origin)
		assert.Equal(t, 1, res.Counts.Get(2023, 5, 1))
	}
	assert.Less(t, int(src.reads.Load()), len(results))
}
