package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/services"
	"github.com/j-veylop/calendar-widget-tui/internal/services/timeline"
)

func readyModel() *Model {
	model := NewModel(nil)
	model.ready = true
	model.width = 80
	model.height = 24
	return model
}

func testTimeline() timeline.Timeline {
	counts := models.CountsByDate{"2023-05-02": 4}
	return timeline.Timeline{
		Entries: []timeline.Entry{{
			Date:   time.Date(2023, 5, 2, 9, 0, 0, 0, time.UTC),
			Counts: counts,
			Month:  calendar.MustBuild(2023, 5, calendar.DefaultOptions()),
			Origin: models.OriginDocument,
		}},
	}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabCalendar {
		t.Error("Default tab should be Calendar")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tabs placeholder, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init returned nil command")
	}
	if len(model.state.GetNotifications()) != 1 {
		t.Error("Init should show the loading notification")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}
	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_TabKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		from TabID
		want TabID
	}{
		{"digit 2", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}}, TabCalendar, TabHistory},
		{"digit 3", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}, TabCalendar, TabInfo},
		{"digit 1", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}}, TabInfo, TabCalendar},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, TabCalendar, TabHistory},
		{"tab wraps", tea.KeyMsg{Type: tea.KeyTab}, TabInfo, TabCalendar},
		{"shift+tab wraps", tea.KeyMsg{Type: tea.KeyShiftTab}, TabCalendar, TabInfo},
		{"left is left to the tab", tea.KeyMsg{Type: tea.KeyLeft}, TabCalendar, TabCalendar},
		{"l is left to the tab", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}, TabHistory, TabHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := readyModel()
			model.activeTab = tt.from
			model.handleKeyMsg(tt.key)
			if model.activeTab != tt.want {
				t.Errorf("activeTab = %v, want %v", model.activeTab, tt.want)
			}
		})
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	model := readyModel()
	newModel, _ := model.Update(TabSwitchMsg{Tab: TabHistory})
	if newModel.(*Model).activeTab != TabHistory {
		t.Error("ActiveTab should be History")
	}
}

func TestModel_RefreshKey(t *testing.T) {
	model := readyModel()
	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("refresh key should return a command")
	}
	msg, ok := cmd().(RefreshMsg)
	if !ok || msg.Resource != "all" {
		t.Errorf("got %#v, want RefreshMsg{all}", msg)
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.ready = true
	model.width = 80
	model.height = 24

	view = model.View()
	if !strings.Contains(view, "Calendar") {
		t.Error("View should show Calendar tab")
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}
}

func TestModel_Help(t *testing.T) {
	model := readyModel()

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("showHelp should be false after esc")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := readyModel()
	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})

	if len(model.state.GetNotifications()) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(model.state.GetNotifications()))
	}
	if !strings.Contains(model.View(), "Test Note") {
		t.Error("View should show notification")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil)
	model.state.SetLoading("timeline", true)

	model.handleServiceEvent(services.TimelineUpdatedEvent{Timeline: testTimeline()})
	if _, ok := model.state.GetTimeline(); !ok {
		t.Error("Timeline should be stored")
	}
	if model.state.Loading.Timeline {
		t.Error("Timeline loading should be cleared")
	}

	model.handleServiceEvent(services.StatsEvent{Reloads: 5, Origin: models.OriginCache})
	if got := model.state.GetStats(); got == nil || got.Reloads != 5 {
		t.Error("Stats should be updated")
	}

	cmd := model.handleServiceEvent(services.ErrorEvent{Service: "shared", Error: errors.New("boom")})
	if cmd == nil {
		t.Fatal("Error event should trigger notification command")
	}
	msg := cmd().(AddNotificationMsg)
	if msg.Message != "[shared] boom" || msg.Type != NotificationError {
		t.Errorf("notification = %#v", msg)
	}
}

func TestModel_Update_Messages(t *testing.T) {
	model := NewModel(nil)
	model.Init()

	model.Update(StartLoadingMsg{Resource: "timeline"})
	if !model.state.Loading.Timeline {
		t.Error("Loading.Timeline should be true")
	}

	model.Update(TimelineLoadedMsg{Timeline: testTimeline(), Stats: services.StatsEvent{Reloads: 1}})
	if model.state.Loading.Initial || model.state.Loading.Timeline {
		t.Error("loading flags should be cleared")
	}
	if model.state.CurrentEntry().Counts.Get(2023, 5, 2) != 4 {
		t.Error("timeline should be stored")
	}
	for _, n := range model.state.GetNotifications() {
		if n.Type == NotificationLoading {
			t.Error("loading notification should be cleared")
		}
	}

	model.Update(StatsLoadedMsg{Stats: services.StatsEvent{Reloads: 2}})
	if model.state.GetStats().Reloads != 2 {
		t.Error("Stats should be updated")
	}

	opts := calendar.Options{FirstWeekday: calendar.Sunday, Filler: calendar.FillerLegacy}
	model.Update(GridOptionsChangedMsg{Options: opts})
	if model.state.GetGridOptions() != opts {
		t.Error("grid options should be stored")
	}

	// No manager: refresh is a no-op.
	model.Update(RefreshMsg{Resource: "all"})
	model.Update(RefreshMsg{Resource: "stats"})

	model.Update(AddNotificationMsg{Message: "test", Type: NotificationInfo})
	model.Update(RemoveNotificationMsg{ID: "nonexistent"})
	model.Update(ClearExpiredNotificationsMsg{})
}

func TestModel_ErrorMsg(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(ErrorMsg{Context: "save", Error: errors.New("disk full")})
	if cmd == nil {
		t.Fatal("ErrorMsg should return a command")
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		context string
		err     error
		want    string
	}{
		{"save", errors.New("x"), "save: x"},
		{"", errors.New("x"), "x"},
		{"only context", nil, "only context"},
	}
	for _, tt := range tests {
		if got := errorText(tt.context, tt.err); got != tt.want {
			t.Errorf("errorText(%q, %v) = %q, want %q", tt.context, tt.err, got, tt.want)
		}
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	tests := map[TabID]string{
		TabCalendar: "Calendar",
		TabHistory:  "History",
		TabInfo:     "Info",
		TabID(999):  "Unknown",
	}
	for id, want := range tests {
		if got := id.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", id, got, want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
