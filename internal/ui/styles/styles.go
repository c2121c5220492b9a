// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the calendar theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Calendar colors
	Sunday = lipgloss.Color("203") // Red
	Today  = lipgloss.Color("214") // Amber

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// IntensityColors are the cell backgrounds for shading levels 0 through 3.
var IntensityColors = []lipgloss.Color{
	lipgloss.Color("236"),
	lipgloss.Color("22"),
	lipgloss.Color("28"),
	lipgloss.Color("34"),
}

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// WeekdayHeaderStyle styles the weekday labels above the grid.
var WeekdayHeaderStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Bold(true)

// SundayHeaderStyle styles the Sunday column label.
var SundayHeaderStyle = WeekdayHeaderStyle.
	Foreground(Sunday)

// DayCellStyle is the base style for a day of the displayed month.
var DayCellStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// SundayCellStyle colors the day number in the Sunday column.
var SundayCellStyle = DayCellStyle.
	Foreground(Sunday)

// FillerCellStyle dims days that only pad the grid.
var FillerCellStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Faint(true)

// TodayCellStyle marks the current day.
var TodayCellStyle = lipgloss.NewStyle().
	Foreground(Today).
	Bold(true).
	Underline(true)

// UpdatedStyle styles the "updated" timestamp under the grid.
var UpdatedStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// OriginDocumentStyle marks counts read from the shared document.
var OriginDocumentStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// OriginCacheStyle marks counts served from the last-known-good copy.
var OriginCacheStyle = lipgloss.NewStyle().
	Foreground(Warning)

// OriginEmptyStyle marks a widget with no data at all.
var OriginEmptyStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// IntensityStyle returns the cell style for a shading level. Levels outside
// 0..3 are clamped.
func IntensityStyle(level int) lipgloss.Style {
	level = max(0, min(level, len(IntensityColors)-1))
	return lipgloss.NewStyle().Background(IntensityColors[level])
}

// GetOriginStyle returns the style for a data origin name.
func GetOriginStyle(origin string) lipgloss.Style {
	switch origin {
	case "document":
		return OriginDocumentStyle
	case "cache":
		return OriginCacheStyle
	default:
		return OriginEmptyStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
