// Package counts loads the appointment counts with a last-known-good fallback.
package counts

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/j-veylop/calendar-widget-tui/internal/logger"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
)

// Source is the primary counts document.
type Source interface {
	Read() (models.CountsByDate, error)
}

// Fallback persists the last successful read.
type Fallback interface {
	LoadCounts(ctx context.Context) (models.CountsByDate, error)
	SaveCounts(ctx context.Context, counts models.CountsByDate) error
}

// Result is the outcome of a load. Err holds the source failure when the
// counts came from the cache or are empty.
type Result struct {
	LoadedAt time.Time
	Err      error
	Counts   models.CountsByDate
	Origin   models.Origin
}

// Loader reads counts through to the source and falls back to the last good
// copy when the source cannot be read.
type Loader struct {
	source   Source
	fallback Fallback
	lastGood models.CountsByDate
	group    singleflight.Group
	mu       sync.RWMutex
}

// NewLoader creates a loader. fallback may be nil.
func NewLoader(source Source, fallback Fallback) *Loader {
	return &Loader{
		source:   source,
		fallback: fallback,
	}
}

// Load returns the current counts. It never fails: when neither the source
// nor a cached copy is available the result is an empty mapping.
// Concurrent callers share one read.
func (l *Loader) Load(ctx context.Context) Result {
	v, _, _ := l.group.Do("load", func() (any, error) {
		return l.load(ctx), nil
	})
	res := v.(Result)
	res.Counts = res.Counts.Clone()
	return res
}

func (l *Loader) load(ctx context.Context) Result {
	now := time.Now()

	counts, err := l.readSource()
	if err == nil {
		l.mu.Lock()
		l.lastGood = counts.Clone()
		l.mu.Unlock()

		if l.fallback != nil {
			if saveErr := l.fallback.SaveCounts(ctx, counts); saveErr != nil {
				logger.Warn("failed to cache counts", "error", saveErr)
			}
		}
		return Result{Counts: counts, Origin: models.OriginDocument, LoadedAt: now}
	}

	logger.Debug("counts source unavailable", "error", err)

	if cached, ok := l.LastGood(); ok {
		return Result{Counts: cached, Origin: models.OriginCache, Err: err, LoadedAt: now}
	}

	if l.fallback != nil {
		cached, cacheErr := l.fallback.LoadCounts(ctx)
		switch {
		case cacheErr != nil:
			logger.Warn("failed to load cached counts", "error", cacheErr)
			err = errors.Join(err, cacheErr)
		case len(cached) > 0:
			l.mu.Lock()
			l.lastGood = cached.Clone()
			l.mu.Unlock()
			return Result{Counts: cached, Origin: models.OriginCache, Err: err, LoadedAt: now}
		}
	}

	return Result{Counts: make(models.CountsByDate), Origin: models.OriginEmpty, Err: err, LoadedAt: now}
}

func (l *Loader) readSource() (models.CountsByDate, error) {
	if l.source == nil {
		return nil, errors.New("no counts source configured")
	}
	counts, err := l.source.Read()
	if err != nil {
		return nil, err
	}
	if err := counts.Validate(); err != nil {
		return nil, err
	}
	if counts == nil {
		counts = make(models.CountsByDate)
	}
	return counts, nil
}

// LastGood returns the in-memory copy of the last successful read.
func (l *Loader) LastGood() (models.CountsByDate, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.lastGood == nil {
		return nil, false
	}
	return l.lastGood.Clone(), true
}
