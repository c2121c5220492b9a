// Package calendar lays out a month as a fixed six-week grid.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the first-day-of-week convention used to order grid columns.
// Values match time.Weekday so conversions are direct.
type Weekday int

const (
	// Sunday starts each week on Sunday.
	Sunday Weekday = Weekday(time.Sunday)
	// Monday starts each week on Monday.
	Monday Weekday = Weekday(time.Monday)
)

// String returns the lower-case name of the weekday convention.
func (w Weekday) String() string {
	switch w {
	case Sunday:
		return "sunday"
	case Monday:
		return "monday"
	default:
		return fmt.Sprintf("weekday(%d)", int(w))
	}
}

// Valid reports whether w is a supported convention.
func (w Weekday) Valid() bool {
	return w == Sunday || w == Monday
}

// Toggle returns the other convention.
func (w Weekday) Toggle() Weekday {
	if w == Monday {
		return Sunday
	}
	return Monday
}

// Column returns the zero-based grid column of d under this convention.
func (w Weekday) Column(d time.Weekday) int {
	return (int(d) - int(w) + DaysPerWeek) % DaysPerWeek
}

// ColumnWeekday is the inverse of Column.
func (w Weekday) ColumnWeekday(col int) time.Weekday {
	return time.Weekday((int(w) + col) % DaysPerWeek)
}

// Headers returns two-letter column labels in display order.
func (w Weekday) Headers() []string {
	headers := make([]string, DaysPerWeek)
	for col := 0; col < DaysPerWeek; col++ {
		headers[col] = w.ColumnWeekday(col).String()[:2]
	}
	return headers
}

// ParseWeekday parses "sunday", "sun", "monday" or "mon", ignoring case.
func ParseWeekday(s string) (Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return Sunday, nil
	case "monday", "mon":
		return Monday, nil
	}
	return Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// FillerMode selects how cells after the last day of the month are numbered.
type FillerMode int

const (
	// FillerNextMonth numbers padding cells with the following month's days,
	// continuing straight after the last day so each lands in its real column.
	FillerNextMonth FillerMode = iota
	// FillerLegacy leaves the last partial week blank and appends whole rows
	// numbered 1, 2, 3, ... regardless of the following month's weekday.
	FillerLegacy
)

// String returns the configuration name of the mode.
func (f FillerMode) String() string {
	switch f {
	case FillerNextMonth:
		return "next-month"
	case FillerLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("filler(%d)", int(f))
	}
}

// Toggle returns the other mode.
func (f FillerMode) Toggle() FillerMode {
	if f == FillerLegacy {
		return FillerNextMonth
	}
	return FillerLegacy
}

// ParseFillerMode parses "next-month" or "legacy".
func ParseFillerMode(s string) (FillerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next-month", "nextmonth", "next":
		return FillerNextMonth, nil
	case "legacy":
		return FillerLegacy, nil
	}
	return FillerNextMonth, fmt.Errorf("%w: %q", ErrInvalidFillerMode, s)
}
