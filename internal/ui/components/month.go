package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/styles"
)

// CellWidth is the number of terminal columns used by one grid cell.
const CellWidth = 4

const (
	todayMarker = '>'
	fillerMark  = '·'
)

// MonthView is everything needed to draw one month.
type MonthView struct {
	Today  time.Time
	Counts models.CountsByDate
	Grid   calendar.MonthGrid
	// Plain renders without colors; shading becomes a block glyph after the day.
	Plain bool
}

// RenderMonth draws the title, the weekday header row and all six weeks.
func RenderMonth(v MonthView) string {
	lines := make([]string, 0, calendar.WeeksPerGrid+2)

	title := v.Grid.Title()
	if !v.Plain {
		title = styles.CardTitleStyle.UnsetMarginBottom().Render(title)
	}
	lines = append(lines, title)
	lines = append(lines, renderHeaders(v))

	for row := 0; row < calendar.WeeksPerGrid; row++ {
		var b strings.Builder
		for col := 0; col < calendar.DaysPerWeek; col++ {
			b.WriteString(renderCell(v, row, col))
		}
		line := b.String()
		if v.Plain {
			line = strings.TrimRight(line, " ")
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// GridWidth returns the rendered width of the grid in columns.
func GridWidth() int {
	return CellWidth * calendar.DaysPerWeek
}

func renderHeaders(v MonthView) string {
	var b strings.Builder
	for col, h := range v.Grid.FirstWeekday.Headers() {
		text := " " + h + " "
		switch {
		case v.Plain:
		case isSundayColumn(v.Grid, col):
			text = styles.SundayHeaderStyle.Render(text)
		default:
			text = styles.WeekdayHeaderStyle.Render(text)
		}
		b.WriteString(text)
	}
	if v.Plain {
		return strings.TrimRight(b.String(), " ")
	}
	return b.String()
}

func renderCell(v MonthView, row, col int) string {
	c := v.Grid.Cell(row, col)

	switch c.Kind {
	case calendar.CellBlank:
		return strings.Repeat(" ", CellWidth)

	case calendar.CellFiller:
		if v.Plain {
			return fmt.Sprintf(" %2d%c", c.Day, fillerMark)
		}
		return styles.FillerCellStyle.Render(fmt.Sprintf(" %2d ", c.Day))
	}

	level := models.Intensity(v.Counts.Get(v.Grid.Year, v.Grid.Month, c.Day))
	today := isToday(v, c)

	if v.Plain {
		marker := ' '
		if today {
			marker = todayMarker
		}
		return fmt.Sprintf("%c%2d%c", marker, c.Day, HeatmapBlocks[level])
	}

	return dayStyle(v.Grid, col, level, today).Render(fmt.Sprintf(" %2d ", c.Day))
}

func dayStyle(g calendar.MonthGrid, col, level int, today bool) lipgloss.Style {
	base := styles.DayCellStyle
	if isSundayColumn(g, col) {
		base = styles.SundayCellStyle
	}
	if today {
		base = styles.TodayCellStyle
	}
	return styles.IntensityStyle(level).Inherit(base)
}

func isSundayColumn(g calendar.MonthGrid, col int) bool {
	return g.FirstWeekday.ColumnWeekday(col) == time.Sunday
}

func isToday(v MonthView, c calendar.Cell) bool {
	if v.Today.IsZero() || c.Kind != calendar.CellDay {
		return false
	}
	return v.Today.Year() == v.Grid.Year &&
		int(v.Today.Month()) == v.Grid.Month &&
		v.Today.Day() == c.Day
}
