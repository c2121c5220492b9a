// Package timeline produces the widget's display entries and refreshes them
// on a schedule or on demand.
package timeline

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/logger"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/services/counts"
)

// CountsLoader supplies the counts for a snapshot.
type CountsLoader interface {
	Load(ctx context.Context) counts.Result
}

// Recorder stores a record of every reload.
type Recorder interface {
	InsertRefresh(ctx context.Context, rec *models.RefreshRecord) error
}

// Entry is one renderable state of the widget.
type Entry struct {
	Date   time.Time
	Err    error
	Counts models.CountsByDate
	Month  calendar.MonthGrid
	Origin models.Origin
}

// Timeline is the set of entries to display and when to ask again.
type Timeline struct {
	NextUpdate time.Time
	Entries    []Entry
}

// Current returns the first entry, or a zero entry if there is none.
func (t Timeline) Current() Entry {
	if len(t.Entries) == 0 {
		return Entry{}
	}
	return t.Entries[0]
}

// Event represents a timeline event.
type Event struct {
	Error    error
	Timeline Timeline
	Type     EventType
}

// EventType defines the type of timeline event.
type EventType int

const (
	// EventTimelineReloaded indicates that the counts were read from the document.
	EventTimelineReloaded EventType = iota
	// EventTimelineError indicates that the reload fell back to cached or empty counts.
	EventTimelineError
)

// Config holds configuration for the timeline provider.
type Config struct {
	Now             func() time.Time
	Grid            calendar.Options
	RefreshInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Now:             time.Now,
		Grid:            calendar.DefaultOptions(),
		RefreshInterval: time.Hour,
	}
}

// Stats summarises the provider's reload history.
type Stats struct {
	LastReload time.Time
	Reloads    int
	Failures   int
	LastOrigin models.Origin
}

// Provider builds timeline entries and reloads them in the background.
type Provider struct {
	loader     CountsLoader
	recorder   Recorder
	current    Timeline
	eventChan  chan Event
	reloadChan chan struct{}
	stopChan   chan struct{}
	config     Config
	stats      Stats
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closeOnce  sync.Once
}

// New creates a provider and starts its refresh loop. recorder may be nil.
func New(loader CountsLoader, recorder Recorder, config Config) *Provider {
	defaults := DefaultConfig()
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = defaults.RefreshInterval
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}

	p := &Provider{
		loader:     loader,
		recorder:   recorder,
		config:     config,
		eventChan:  make(chan Event, 100),
		reloadChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}
	p.current = Timeline{
		Entries:    []Entry{p.Placeholder(config.Now())},
		NextUpdate: config.Now(),
	}

	p.wg.Add(1)
	go p.refreshLoop()

	return p
}

// Events returns the event channel.
func (p *Provider) Events() <-chan Event {
	return p.eventChan
}

// Placeholder returns an entry for now with no appointments.
func (p *Provider) Placeholder(now time.Time) Entry {
	return Entry{
		Date:   now,
		Counts: make(models.CountsByDate),
		Month:  p.grid(now),
		Origin: models.OriginEmpty,
	}
}

// Snapshot loads the counts and returns the entry for now.
func (p *Provider) Snapshot(ctx context.Context, now time.Time) Entry {
	res := p.loader.Load(ctx)
	return Entry{
		Date:   now,
		Counts: res.Counts,
		Month:  p.grid(now),
		Origin: res.Origin,
		Err:    res.Err,
	}
}

// Timeline returns a single-entry timeline that should be refreshed after
// the configured interval.
func (p *Provider) Timeline(ctx context.Context, now time.Time) Timeline {
	return Timeline{
		Entries:    []Entry{p.Snapshot(ctx, now)},
		NextUpdate: now.Add(p.config.RefreshInterval),
	}
}

// Current returns the most recently produced timeline.
func (p *Provider) Current() Timeline {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// GetStats returns reload statistics.
func (p *Provider) GetStats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Reload requests a refresh outside the schedule. Requests made while one is
// already pending are merged.
func (p *Provider) Reload() {
	select {
	case p.reloadChan <- struct{}{}:
	default:
	}
}

func (p *Provider) grid(now time.Time) calendar.MonthGrid {
	g, err := calendar.Build(now.Year(), int(now.Month()), p.config.Grid)
	if err != nil {
		logger.Error("failed to build month grid", "date", now, "error", err)
	}
	return g
}

func (p *Provider) refresh(ctx context.Context) {
	now := p.config.Now()
	tl := p.Timeline(ctx, now)
	entry := tl.Current()

	p.mu.Lock()
	p.current = tl
	p.stats.Reloads++
	p.stats.LastReload = now
	p.stats.LastOrigin = entry.Origin
	if entry.Err != nil {
		p.stats.Failures++
	}
	p.mu.Unlock()

	if p.recorder != nil {
		rec := &models.RefreshRecord{
			RefreshedAt: now,
			Origin:      entry.Origin,
			Entries:     len(entry.Counts),
			Total:       entry.Counts.Total(),
		}
		if entry.Err != nil {
			rec.Error = entry.Err.Error()
		}
		if err := p.recorder.InsertRefresh(ctx, rec); err != nil {
			logger.Warn("failed to record refresh", "error", err)
		}
	}

	if entry.Err != nil {
		logger.Warn("timeline reloaded from fallback", "origin", entry.Origin.String(), "error", entry.Err)
		p.sendEvent(Event{Type: EventTimelineError, Timeline: tl, Error: entry.Err})
		return
	}

	logger.Debug("timeline reloaded", "entries", len(entry.Counts), "next", tl.NextUpdate)
	p.sendEvent(Event{Type: EventTimelineReloaded, Timeline: tl})
}

// refreshLoop runs the background refresh goroutine.
func (p *Provider) refreshLoop() {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-p.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initial refresh
	p.refresh(ctx)

	ticker := time.NewTicker(p.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh(ctx)
		case <-p.reloadChan:
			p.refresh(ctx)
			ticker.Reset(p.config.RefreshInterval)
		case <-p.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (p *Provider) sendEvent(event Event) {
	select {
	case p.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-p.eventChan:
		default:
		}
		select {
		case p.eventChan <- event:
		default:
		}
	}
}

// Close stops the refresh loop and waits for it to exit.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		close(p.stopChan)
	})
	p.wg.Wait()
	return nil
}
