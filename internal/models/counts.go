// Package models defines data structures and domain types.
package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
)

var (
	// ErrInvalidDateKey is returned for a key that is not a real YYYY-MM-DD date.
	ErrInvalidDateKey = errors.New("invalid date key")
	// ErrNegativeCount is returned for a count below zero.
	ErrNegativeCount = errors.New("negative count")
)

// MaxIntensity is the shading level reached at MaxIntensity appointments or more.
const MaxIntensity = 3

// CountsByDate maps a YYYY-MM-DD key to the number of appointments on that day.
type CountsByDate map[string]int

// Get returns the count for a date, or 0 if absent.
func (c CountsByDate) Get(year, month, day int) int {
	return c[calendar.DateKey(year, month, day)]
}

// Validate checks every key is a real date and every count is non-negative.
func (c CountsByDate) Validate() error {
	for _, key := range c.Keys() {
		if _, _, _, err := calendar.ParseDateKey(key); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
		}
		if c[key] < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeCount, key, c[key])
		}
	}
	return nil
}

// Keys returns the keys in ascending date order.
func (c CountsByDate) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a copy that shares nothing with c.
func (c CountsByDate) Clone() CountsByDate {
	out := make(CountsByDate, len(c))
	maps.Copy(out, c)
	return out
}

// Total returns the sum of all counts.
func (c CountsByDate) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ForMonth returns the entries that fall in month of year.
func (c CountsByDate) ForMonth(year, month int) CountsByDate {
	out := make(CountsByDate)
	for day := 1; day <= calendar.DaysIn(year, month); day++ {
		key := calendar.DateKey(year, month, day)
		if n, ok := c[key]; ok {
			out[key] = n
		}
	}
	return out
}

// Series returns the month's counts in day order, zero-filled.
func (c CountsByDate) Series(year, month int) []float64 {
	days := calendar.DaysIn(year, month)
	series := make([]float64, days)
	for day := 1; day <= days; day++ {
		series[day-1] = float64(c.Get(year, month, day))
	}
	return series
}

// Equal reports whether both mappings hold the same entries.
func (c CountsByDate) Equal(other CountsByDate) bool {
	return maps.Equal(c, other)
}

// Intensity maps a count to a shading level from 0 to MaxIntensity.
func Intensity(count int) int {
	if count <= 0 {
		return 0
	}
	return min(count, MaxIntensity)
}
