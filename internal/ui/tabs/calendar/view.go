package calendar

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	cal "github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/components"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/styles"
)

// View renders the calendar tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	year, month := m.displayedMonth()
	grid, err := cal.Build(year, month, m.state.GetGridOptions())
	if err != nil {
		return styles.DocStyle.Render(styles.ErrorTextStyle.Render(err.Error()))
	}

	entry := m.state.CurrentEntry()

	card := lipgloss.JoinVertical(lipgloss.Left,
		components.RenderMonth(components.MonthView{
			Grid:   grid,
			Counts: entry.Counts,
			Today:  m.now(),
		}),
		"",
		m.renderSummary(grid, entry.Counts),
		renderUpdated(entry.Date),
	)

	sections := []string{
		m.renderHeader(),
		styles.CardStyle.Render(card),
		components.RenderIntensityLegend(),
	}
	if entry.Err != nil {
		sections = append(sections, "", styles.WarningTextStyle.Render("! "+entry.Err.Error()))
	}

	return styles.DocStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	origin := m.state.CurrentEntry().Origin
	badge := styles.GetOriginStyle(origin.String()).Render(originLabel(origin))

	title := styles.TitleStyle.UnsetMarginBottom().Render("Appointments")
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge)

	opts := m.state.GetGridOptions()
	sub := styles.HelpStyle.Render(fmt.Sprintf("weeks start %s · filler %s", opts.FirstWeekday, opts.Filler))

	return lipgloss.JoinVertical(lipgloss.Left, header, sub, "")
}

func (m *Model) renderSummary(grid cal.MonthGrid, counts models.CountsByDate) string {
	month := counts.ForMonth(grid.Year, grid.Month)
	total := month.Total()

	busiest := 0
	for _, n := range month {
		busiest = max(busiest, n)
	}

	line := fmt.Sprintf("%d %s on %d %s",
		total, plural(total, "appointment"), len(month), plural(len(month), "day"))
	if busiest > 0 {
		line += fmt.Sprintf(" · busiest day %d", busiest)
	}

	spark := components.RenderSparkline(counts.Series(grid.Year, grid.Month), components.GridWidth())
	return lipgloss.JoinVertical(lipgloss.Left, line, styles.InfoTextStyle.Render(spark))
}

func renderUpdated(updated time.Time) string {
	if updated.IsZero() {
		return styles.UpdatedStyle.Render("not updated yet")
	}
	return styles.UpdatedStyle.Render("updated " + updated.Format("Jan 2 15:04"))
}

func originLabel(o models.Origin) string {
	switch o {
	case models.OriginDocument:
		return "● live"
	case models.OriginCache:
		return "◐ cached"
	default:
		return "○ no data"
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
