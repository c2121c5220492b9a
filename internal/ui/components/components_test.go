package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}

	if s.View() == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should contain the label")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should return command for tick")
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
	if s.Spinner().Spinner.Frames == nil {
		t.Error("Spinner accessor failed")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if lipgloss.Height(view) != 5 {
		t.Errorf("height = %d, want 5", lipgloss.Height(view))
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Test"); !strings.Contains(s, "Test") {
		t.Error("RenderLineChart should include the caption")
	}
	if s := RenderLineChart(nil, 20, 5, "Test"); !strings.Contains(s, "No data") {
		t.Error("empty data should render a placeholder")
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{10, 20}, []string{"Mo", "Tu"}, 30)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if strings.Count(lines[1], "█") <= strings.Count(lines[0], "█") {
		t.Error("larger value should have the longer bar")
	}
	if RenderBarChart(nil, nil, 30) != "" {
		t.Error("no values should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"zero width", []float64{1}, 0, ""},
		{"ramp", []float64{0, 7}, 10, "▁█"},
		{"all zero", []float64{0, 0, 0}, 10, "▁▁▁"},
		{"sampled", []float64{0, 0, 7, 7}, 2, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderSparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("RenderSparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderLegend(t *testing.T) {
	s := RenderLegend([]LegendItem{{Label: "A", Color: lipgloss.Color("#ffffff")}})
	if !strings.Contains(s, "A") {
		t.Error("RenderLegend should contain the label")
	}
	if !strings.Contains(ansi.Strip(RenderIntensityLegend()), "3+") {
		t.Error("intensity legend should show the saturated level")
	}
}

func mayView(plain bool) MonthView {
	return MonthView{
		Grid:   calendar.MustBuild(2023, 5, calendar.DefaultOptions()),
		Counts: models.CountsByDate{"2023-05-02": 4, "2023-05-03": 1},
		Today:  time.Date(2023, 5, 15, 10, 0, 0, 0, time.UTC),
		Plain:  plain,
	}
}

func TestRenderMonth_Plain(t *testing.T) {
	lines := strings.Split(RenderMonth(mayView(true)), "\n")

	if len(lines) != 2+calendar.WeeksPerGrid {
		t.Fatalf("got %d lines, want %d", len(lines), 2+calendar.WeeksPerGrid)
	}
	if lines[0] != "May 2023" {
		t.Errorf("title = %q", lines[0])
	}
	if lines[1] != " Mo  Tu  We  Th  Fr  Sa  Su" {
		t.Errorf("headers = %q", lines[1])
	}
	if lines[2] != "  1   2█  3░  4   5   6   7" {
		t.Errorf("first week = %q", lines[2])
	}
	if !strings.Contains(lines[4], ">15 ") {
		t.Errorf("today should be marked: %q", lines[4])
	}
	// May 2023 ends on a Wednesday; June 1 follows in the Thursday column.
	if lines[6] != " 29  30  31   1·  2·  3·  4·" {
		t.Errorf("last month week = %q", lines[6])
	}
	if lines[7] != "  5·  6·  7·  8·  9· 10· 11·" {
		t.Errorf("filler week = %q", lines[7])
	}
}

func TestRenderMonth_PlainSundayFirstLegacy(t *testing.T) {
	v := mayView(true)
	v.Grid = calendar.MustBuild(2023, 5, calendar.Options{
		FirstWeekday: calendar.Sunday,
		Filler:       calendar.FillerLegacy,
	})
	v.Today = time.Time{}

	lines := strings.Split(RenderMonth(v), "\n")
	if lines[1] != " Su  Mo  Tu  We  Th  Fr  Sa" {
		t.Errorf("headers = %q", lines[1])
	}
	if lines[2] != "      1   2█  3░  4   5   6" {
		t.Errorf("first week = %q", lines[2])
	}
	if strings.Contains(strings.Join(lines, "\n"), ">") {
		t.Error("zero Today should not mark any day")
	}
	// Legacy filler leaves the partial week blank and restarts from 1.
	if lines[6] != " 28  29  30  31" {
		t.Errorf("last month week = %q", lines[6])
	}
	if lines[7] != "  1·  2·  3·  4·  5·  6·  7·" {
		t.Errorf("filler week = %q", lines[7])
	}
}

func TestRenderMonth_Styled(t *testing.T) {
	out := RenderMonth(mayView(false))
	plain := ansi.Strip(out)

	lines := strings.Split(plain, "\n")
	if len(lines) != 2+calendar.WeeksPerGrid {
		t.Fatalf("got %d lines, want %d", len(lines), 2+calendar.WeeksPerGrid)
	}
	for i, line := range lines[1:] {
		if w := lipgloss.Width(line); w != GridWidth() {
			t.Errorf("line %d width = %d, want %d", i+1, w, GridWidth())
		}
	}
	if !strings.Contains(plain, "May 2023") {
		t.Error("styled view should contain the title")
	}
}

func TestIsToday(t *testing.T) {
	v := mayView(true)
	day := calendar.Cell{Kind: calendar.CellDay, Day: 15}
	filler := calendar.Cell{Kind: calendar.CellFiller, Day: 15}

	if !isToday(v, day) {
		t.Error("day 15 should be today")
	}
	if isToday(v, filler) {
		t.Error("filler cells are never today")
	}
	v.Today = v.Today.AddDate(0, 1, 0)
	if isToday(v, day) {
		t.Error("same day of another month is not today")
	}
}
