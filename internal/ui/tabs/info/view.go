package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/calendar-widget-tui/internal/ui/styles"
	"github.com/j-veylop/calendar-widget-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderDataCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Data source, configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderDataCard shows where the displayed counts came from.
func (m *Model) renderDataCard() string {
	rows := []string{styles.CardTitleStyle.Render("Data Source"), ""}

	stats := m.state.GetStats()
	if stats == nil {
		rows = append(rows, styles.HelpStyle.Render("No reload yet"))
	} else {
		origin := stats.Origin.String()
		rows = append(rows,
			m.renderConfigRow("Origin", styles.GetOriginStyle(origin).Render(origin)),
			m.renderConfigRow("Days with data", fmt.Sprintf("%d", stats.Entries)),
			m.renderConfigRow("Appointments", fmt.Sprintf("%d", stats.Total)),
			m.renderConfigRow("Reloads", fmt.Sprintf("%d (%d failed)", stats.Reloads, stats.Failures)),
		)
		if !stats.LastReload.IsZero() {
			rows = append(rows, m.renderConfigRow("Last reload", stats.LastReload.Format("2006-01-02 15:04:05")))
		}
	}

	if tl, ok := m.state.GetTimeline(); ok && !tl.NextUpdate.IsZero() {
		rows = append(rows, m.renderConfigRow("Next reload", tl.NextUpdate.Format("2006-01-02 15:04:05")))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigCard renders the configuration paths card.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config != nil {
		rows = append(rows,
			m.renderConfigRow("Counts File", m.config.CountsPath),
			m.renderConfigRow("Database", m.config.DatabasePath),
			m.renderConfigRow("Log File", m.config.LogPath),
			m.renderConfigRow("Refresh", m.config.TimelineRefreshInterval.String()),
			m.renderConfigRow("First Weekday", m.config.FirstWeekday.String()),
			m.renderConfigRow("Filler Days", m.config.FillerMode.String()),
			m.renderConfigRow("Notifications", onOff(m.config.Notifications)),
			m.renderConfigRow("AMQP Signal", amqpStatus(m.config.AMQPURL, m.config.AMQPExchange)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.AppName),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func amqpStatus(url, exchange string) string {
	if url == "" {
		return "disabled"
	}
	return "exchange " + exchange
}
