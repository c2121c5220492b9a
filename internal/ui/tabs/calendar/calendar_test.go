package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/calendar-widget-tui/internal/app"
	cal "github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/services/timeline"
)

var fixedNow = time.Date(2023, 5, 15, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T) (*Model, *app.State) {
	t.Helper()
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state)
	m.now = func() time.Time { return fixedNow }
	m.SetSize(80, 30)
	return m, state
}

func setEntry(state *app.State, entry timeline.Entry) {
	state.SetTimeline(timeline.Timeline{Entries: []timeline.Entry{entry}})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
	if len(m.ShortHelp()) != 5 {
		t.Errorf("ShortHelp has %d bindings, want 5", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestDisplayedMonth(t *testing.T) {
	m, state := newTestModel(t)

	if y, mo := m.displayedMonth(); y != 2023 || mo != 5 {
		t.Errorf("without an entry = %d-%d, want clock month 2023-5", y, mo)
	}

	setEntry(state, timeline.Entry{Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)})
	if y, mo := m.displayedMonth(); y != 2024 || mo != 2 {
		t.Errorf("with an entry = %d-%d, want 2024-2", y, mo)
	}
}

func TestNavigation(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []struct {
		key       tea.KeyMsg
		wantYear  int
		wantMonth int
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, 2023, 4},
		{keyRunes("h"), 2023, 3},
		{tea.KeyMsg{Type: tea.KeyRight}, 2023, 4},
		{keyRunes("l"), 2023, 5},
		{keyRunes("t"), 2023, 5},
	}
	for _, tt := range tests {
		m.Update(tt.key)
		if y, mo := m.displayedMonth(); y != tt.wantYear || mo != tt.wantMonth {
			t.Errorf("after %q: %d-%d, want %d-%d", tt.key.String(), y, mo, tt.wantYear, tt.wantMonth)
		}
	}
	if m.pinned {
		t.Error("t should return to the current month")
	}
}

func TestNavigation_YearBoundary(t *testing.T) {
	m, state := newTestModel(t)
	setEntry(state, timeline.Entry{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)})

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if y, mo := m.displayedMonth(); y != 2022 || mo != 12 {
		t.Errorf("got %d-%d, want 2022-12", y, mo)
	}
}

func TestToggleOptions(t *testing.T) {
	m, state := newTestModel(t)

	_, cmd := m.Update(keyRunes("w"))
	if cmd == nil {
		t.Fatal("w should return a command")
	}
	if got := state.GetGridOptions().FirstWeekday; got != cal.Sunday {
		t.Errorf("FirstWeekday = %v, want sunday", got)
	}

	m.Update(keyRunes("f"))
	if got := state.GetGridOptions().Filler; got != cal.FillerLegacy {
		t.Errorf("Filler = %v, want legacy", got)
	}

	cmd = m.setOptions(state.GetGridOptions(), "note")
	msgs := cmd().(tea.BatchMsg)
	var sawChange bool
	for _, c := range msgs {
		if change, ok := c().(app.GridOptionsChangedMsg); ok {
			sawChange = true
			if change.Options.Filler != cal.FillerLegacy {
				t.Error("change message should carry the new options")
			}
		}
	}
	if !sawChange {
		t.Error("expected a GridOptionsChangedMsg")
	}
}

func TestView_Loading(t *testing.T) {
	state := app.NewState()
	m := New(state)
	m.SetSize(60, 10)
	if !strings.Contains(ansi.Strip(m.View()), "Reading appointment counts") {
		t.Error("initial load should show the spinner label")
	}
}

func TestView_WithCounts(t *testing.T) {
	m, state := newTestModel(t)
	setEntry(state, timeline.Entry{
		Date:   fixedNow,
		Counts: models.CountsByDate{"2023-05-02": 4, "2023-05-03": 1, "2023-06-01": 9},
		Origin: models.OriginDocument,
	})

	view := ansi.Strip(m.View())
	for _, want := range []string{"May 2023", "Mo", "live", "5 appointments on 2 days", "busiest day 4", "updated May 15 09:30"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_CachedWithError(t *testing.T) {
	m, state := newTestModel(t)
	setEntry(state, timeline.Entry{
		Date:   fixedNow,
		Counts: models.CountsByDate{"2023-05-02": 1},
		Origin: models.OriginCache,
		Err:    errors.New("shared document missing"),
	})

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "cached") {
		t.Error("view should show the cached badge")
	}
	if !strings.Contains(view, "shared document missing") {
		t.Error("view should show the reload error")
	}
	if !strings.Contains(view, "1 appointment on 1 day") {
		t.Error("view should use the singular noun")
	}
}

func TestOriginLabel(t *testing.T) {
	tests := map[models.Origin]string{
		models.OriginDocument: "● live",
		models.OriginCache:    "◐ cached",
		models.OriginEmpty:    "○ no data",
	}
	for origin, want := range tests {
		if got := originLabel(origin); got != want {
			t.Errorf("originLabel(%v) = %q, want %q", origin, got, want)
		}
	}
}
