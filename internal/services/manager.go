// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/calendar-widget-tui/internal/config"
	"github.com/j-veylop/calendar-widget-tui/internal/db"
	"github.com/j-veylop/calendar-widget-tui/internal/logger"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/services/counts"
	"github.com/j-veylop/calendar-widget-tui/internal/services/timeline"
	"github.com/j-veylop/calendar-widget-tui/internal/shared"
	"github.com/j-veylop/calendar-widget-tui/internal/signal"
)

type (
	// TimelineUpdatedEvent is emitted after every timeline reload.
	TimelineUpdatedEvent struct {
		Timeline timeline.Timeline
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}

	// StatsEvent is emitted when reload statistics change.
	StatsEvent struct {
		LastReload time.Time
		Reloads    int
		Failures   int
		Entries    int
		Total      int
		Origin     models.Origin
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (TimelineUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()           {}
func (StatsEvent) isServiceEvent()           {}

// notifyFunc sends a desktop notification.
var notifyFunc = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	store          *shared.Store
	database       *db.DB
	loader         *counts.Loader
	timeline       *timeline.Provider
	eventChan      chan ServiceEvent
	stopChan       chan struct{}
	cancelListen   context.CancelFunc
	subscribers    []chan ServiceEvent
	previousOrigin *models.Origin
	notifications  bool
	mu             sync.RWMutex
	wg             sync.WaitGroup
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan:     make(chan ServiceEvent, 100),
		stopChan:      make(chan struct{}),
		notifications: cfg.Notifications,
	}

	var err error
	m.store, err = shared.New(cfg.CountsPath)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		_ = m.store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.pruneRefreshLog()

	m.loader = counts.NewLoader(m.store, m.database)

	timelineConfig := timeline.DefaultConfig()
	timelineConfig.RefreshInterval = cfg.TimelineRefreshInterval
	timelineConfig.Grid = cfg.GridOptions()

	m.timeline = timeline.New(m.loader, m.database, timelineConfig)

	if cfg.AMQPURL != "" {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancelListen = cancel
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			signal.Listen(ctx, cfg.AMQPURL, cfg.AMQPExchange, m.handleSignal)
		}()
	}

	m.wg.Add(1)
	go m.routeEvents()

	return m, nil
}

// refreshLogRetention is how long refresh log rows are kept.
const refreshLogRetention = 90 * 24 * time.Hour

func (m *Manager) pruneRefreshLog() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	removed, err := m.database.PruneRefreshes(ctx, time.Now().Add(-refreshLogRetention))
	if err != nil {
		logger.Warn("Failed to prune refresh log", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("Pruned refresh log", "removed", removed)
	}
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.store.Events():
			m.handleDocumentEvent(event)

		case event := <-m.timeline.Events():
			m.handleTimelineEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleDocumentEvent reloads the timeline whenever the shared document changes.
func (m *Manager) handleDocumentEvent(event shared.Event) {
	switch event.Type {
	case shared.EventDocumentChanged, shared.EventDocumentRemoved, shared.EventDocumentWritten:
		logger.Debug("shared document event", "type", event.Type.String())
		m.timeline.Reload()

	case shared.EventError:
		m.broadcast(ErrorEvent{
			Service: "shared",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleTimelineEvent(event timeline.Event) {
	m.broadcast(TimelineUpdatedEvent{Timeline: event.Timeline})

	if event.Type == timeline.EventTimelineError {
		m.broadcast(ErrorEvent{
			Service: "timeline",
			Error:   event.Error,
		})
	}

	m.checkNotifications(event.Timeline.Current().Origin)
	m.broadcast(m.GetStats())
}

func (m *Manager) handleSignal(msg *signal.Message) error {
	logger.Info("received refresh signal", "written_at", msg.WrittenAt, "entries", msg.Entries)
	m.timeline.Reload()
	return nil
}

// checkNotifications alerts when the widget loses or regains the shared
// document. Only transitions notify.
func (m *Manager) checkNotifications(origin models.Origin) {
	m.mu.Lock()
	previous := m.previousOrigin
	m.previousOrigin = &origin
	m.mu.Unlock()

	if previous == nil || !m.notifications {
		return
	}

	wasLive := *previous == models.OriginDocument
	isLive := origin == models.OriginDocument

	var title, body string
	switch {
	case wasLive && !isLive:
		title = "Calendar widget offline"
		body = "Appointment counts could not be read; showing the last known counts."
		if origin == models.OriginEmpty {
			body = "Appointment counts could not be read and no cached copy exists."
		}
	case !wasLive && isLive:
		title = "Calendar widget back online"
		body = "Appointment counts are up to date again."
	default:
		return
	}

	if err := notifyFunc(title, body); err != nil {
		logger.Warn("failed to send notification", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Reload forces a timeline reload.
func (m *Manager) Reload() {
	m.timeline.Reload()
}

// Timeline returns the most recent timeline.
func (m *Manager) Timeline() timeline.Timeline {
	return m.timeline.Current()
}

// GetStats returns aggregated statistics.
func (m *Manager) GetStats() StatsEvent {
	stats := m.timeline.GetStats()
	entry := m.timeline.Current().Current()

	return StatsEvent{
		LastReload: stats.LastReload,
		Reloads:    stats.Reloads,
		Failures:   stats.Failures,
		Entries:    len(entry.Counts),
		Total:      entry.Counts.Total(),
		Origin:     stats.LastOrigin,
	}
}

// GetRecentRefreshes returns the newest refresh log records.
func (m *Manager) GetRecentRefreshes(ctx context.Context, limit int) ([]models.RefreshRecord, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetRecentRefreshes(ctx, limit)
}

// GetDailyTotals returns per-day appointment totals for the range ending on end.
func (m *Manager) GetDailyTotals(ctx context.Context, end time.Time, timeRange models.TimeRange) ([]models.DailyTotal, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetDailyTotals(ctx, end, timeRange.Days())
}

// Store returns the shared document store.
func (m *Manager) Store() *shared.Store {
	return m.store
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)
	if m.cancelListen != nil {
		m.cancelListen()
	}

	var errs []error

	if err := m.timeline.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.store.Close(); err != nil {
		errs = append(errs, err)
	}

	m.wg.Wait()

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// InitialState returns the initial state of all services for TUI initialization.
func (m *Manager) InitialState() (timeline.Timeline, StatsEvent) {
	return m.Timeline(), m.GetStats()
}
