package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Year bounds accepted by Build. The upper bound keeps date keys at four digits.
const (
	MinYear = 1
	MaxYear = 9999
)

// DateKeyLayout is the time layout of keys in a counts mapping.
const DateKeyLayout = "2006-01-02"

var (
	// ErrInvalidMonth is returned for a month outside 1..12.
	ErrInvalidMonth = errors.New("invalid month")
	// ErrInvalidYear is returned for a year outside MinYear..MaxYear.
	ErrInvalidYear = errors.New("invalid year")
	// ErrInvalidWeekday is returned for an unsupported first-weekday convention.
	ErrInvalidWeekday = errors.New("invalid first weekday")
	// ErrInvalidFillerMode is returned for an unknown filler mode.
	ErrInvalidFillerMode = errors.New("invalid filler mode")
)

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year.
func DaysIn(year, month int) int {
	switch month {
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// DateKey formats a date as a zero-padded YYYY-MM-DD key.
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ParseDateKey parses a YYYY-MM-DD key and rejects dates that do not exist.
func ParseDateKey(key string) (year, month, day int, err error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return 0, 0, 0, err
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// Shift moves (year, month) by delta months.
func Shift(year, month, delta int) (int, int) {
	total := year*12 + (month - 1) + delta
	y, m := total/12, total%12
	if m < 0 {
		m += 12
		y--
	}
	return y, m + 1
}

func validate(year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}
