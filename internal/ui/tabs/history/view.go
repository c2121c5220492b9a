package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/components"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && m.refreshes == nil && m.totals == nil {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if len(m.refreshes) == 0 && totalOf(m.totals) == 0 {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderDailyChart(),
		m.renderWeekdayChart(),
		m.renderRefreshLog(),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No refreshes recorded yet."),
		styles.HelpStyle.Render("Data will appear once the shared counts document has been read."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if !m.lastRefresh.IsZero() {
		subtitle = styles.HelpStyle.Render("Loaded " + m.lastRefresh.Format("Jan 2, 15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderDailyChart() string {
	cardWidth := m.cardWidth()

	rows := []string{styles.CardTitleStyle.Render("Daily Appointments")}

	if totalOf(m.totals) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No appointments in this range"))
	} else {
		data := make([]float64, len(m.totals))
		for i, d := range m.totals {
			data[i] = float64(d.Total)
		}

		chartWidth := max(cardWidth-12, 30) // room for axis labels
		caption := fmt.Sprintf("%s → %s, %d appointments",
			m.totals[0].Date, m.totals[len(m.totals)-1].Date, totalOf(m.totals))
		chart := components.RenderLineChart(data, chartWidth, 8, caption)

		for _, line := range strings.Split(chart, "\n") {
			rows = append(rows, "  "+line)
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderWeekdayChart() string {
	cardWidth := m.cardWidth()

	rows := []string{styles.CardTitleStyle.Render("By Weekday")}

	values, labels := weekdayTotals(m.totals, m.state.GetGridOptions().FirstWeekday)
	chart := components.RenderBarChart(values, labels, max(cardWidth-12, 30))
	for _, line := range strings.Split(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRefreshLog() string {
	cardWidth := m.cardWidth()

	rows := []string{styles.CardTitleStyle.Render("Recent Refreshes")}

	if len(m.refreshes) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No refreshes recorded"))
	} else {
		rows = append(rows, styles.TableHeaderStyle.Render(
			fmt.Sprintf("%-16s %-9s %7s %7s  %s", "When", "Origin", "Days", "Total", "Error")))
		for _, r := range m.refreshes {
			rows = append(rows, renderRefreshRow(r))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderRefreshRow(r models.RefreshRecord) string {
	origin := r.Origin.String()
	originCell := styles.GetOriginStyle(origin).Render(fmt.Sprintf("%-9s", origin))

	errText := r.Error
	if len(errText) > 40 {
		errText = errText[:37] + "..."
	}

	return fmt.Sprintf("%-16s %s %7d %7d  %s",
		r.RefreshedAt.Local().Format("Jan 02 15:04:05"),
		originCell, r.Entries, r.Total,
		styles.ErrorTextStyle.Render(errText))
}

// weekdayTotals sums the totals per weekday in the grid's column order.
func weekdayTotals(totals []models.DailyTotal, first calendar.Weekday) ([]float64, []string) {
	values := make([]float64, calendar.DaysPerWeek)
	for _, d := range totals {
		year, month, day, err := calendar.ParseDateKey(d.Date)
		if err != nil {
			continue
		}
		wd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
		values[first.Column(wd)] += float64(d.Total)
	}
	return values, first.Headers()
}

func totalOf(totals []models.DailyTotal) int {
	sum := 0
	for _, d := range totals {
		sum += d.Total
	}
	return sum
}
