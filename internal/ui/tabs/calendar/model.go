// Package calendar provides the widget tab: the month grid shaded by
// appointment counts.
package calendar

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/calendar-widget-tui/internal/app"
	cal "github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the calendar tab.
type keyMap struct {
	PrevMonth     key.Binding
	NextMonth     key.Binding
	Today         key.Binding
	ToggleWeekday key.Binding
	ToggleFiller  key.Binding
}

// defaultKeyMap returns the default key bindings for the calendar tab.
func defaultKeyMap() keyMap {
	return keyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next month"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "current month"),
		),
		ToggleWeekday: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "toggle first weekday"),
		),
		ToggleFiller: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle filler days"),
		),
	}
}

// Model represents the calendar tab state.
type Model struct {
	state   *app.State
	now     func() time.Time
	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int
	// year and month are only used while pinned; otherwise the tab follows
	// the timeline entry.
	year   int
	month  int
	pinned bool
}

// New creates a new calendar model.
func New(state *app.State) *Model {
	return &Model{
		state:   state,
		now:     time.Now,
		spinner: components.NewSpinner("Reading appointment counts..."),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if m.state.IsInitialLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.PrevMonth):
		m.shift(-1)
	case key.Matches(msg, m.keys.NextMonth):
		m.shift(1)
	case key.Matches(msg, m.keys.Today):
		m.pinned = false
	case key.Matches(msg, m.keys.ToggleWeekday):
		opts := m.state.GetGridOptions()
		opts.FirstWeekday = opts.FirstWeekday.Toggle()
		return m.setOptions(opts, fmt.Sprintf("Weeks start on %s", opts.FirstWeekday))
	case key.Matches(msg, m.keys.ToggleFiller):
		opts := m.state.GetGridOptions()
		opts.Filler = opts.Filler.Toggle()
		return m.setOptions(opts, fmt.Sprintf("Filler days: %s", opts.Filler))
	}
	return nil
}

func (m *Model) setOptions(opts cal.Options, note string) tea.Cmd {
	m.state.SetGridOptions(opts)
	return tea.Batch(
		func() tea.Msg { return app.GridOptionsChangedMsg{Options: opts} },
		func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationInfo,
				Message:  note,
				Duration: app.QuickNotificationDuration,
			}
		},
	)
}

func (m *Model) shift(delta int) {
	year, month := m.displayedMonth()
	m.year, m.month = cal.Shift(year, month, delta)
	m.pinned = true
}

// displayedMonth returns the month on screen: the pinned one after
// navigation, else the month of the current entry, else the clock's month.
func (m *Model) displayedMonth() (year, month int) {
	if m.pinned {
		return m.year, m.month
	}
	if entry := m.state.CurrentEntry(); !entry.Date.IsZero() {
		return entry.Date.Year(), int(entry.Date.Month())
	}
	now := m.now()
	return now.Year(), int(now.Month())
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevMonth,
		m.keys.NextMonth,
		m.keys.Today,
		m.keys.ToggleWeekday,
		m.keys.ToggleFiller,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevMonth, m.keys.NextMonth, m.keys.Today},
		{m.keys.ToggleWeekday, m.keys.ToggleFiller},
	}
}
