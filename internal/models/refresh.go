package models

import "time"

// Origin records where a counts mapping was read from.
type Origin int

const (
	// OriginEmpty means no data was available.
	OriginEmpty Origin = iota
	// OriginDocument means the shared document was read successfully.
	OriginDocument
	// OriginCache means the last-known-good copy was used.
	OriginCache
)

// String returns the stored name of the origin.
func (o Origin) String() string {
	switch o {
	case OriginDocument:
		return "document"
	case OriginCache:
		return "cache"
	default:
		return "empty"
	}
}

// ParseOrigin is the inverse of Origin.String.
func ParseOrigin(s string) Origin {
	switch s {
	case "document":
		return OriginDocument
	case "cache":
		return OriginCache
	default:
		return OriginEmpty
	}
}

// RefreshRecord is one timeline reload as stored in the refresh log.
type RefreshRecord struct {
	RefreshedAt time.Time
	ID          string
	Error       string
	Origin      Origin
	Entries     int
	Total       int
}

// DailyTotal is the appointment total for one day.
type DailyTotal struct {
	Date  string
	Total int
}

// TimeRange is the window shown by the history tab.
type TimeRange int

const (
	// TimeRange7Days shows the last week.
	TimeRange7Days TimeRange = iota
	// TimeRange30Days shows the last month.
	TimeRange30Days
	// TimeRange90Days shows the last quarter.
	TimeRange90Days
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRange90Days:
		return "90 Days"
	default:
		return "Unknown"
	}
}

// Days returns the number of days covered.
func (t TimeRange) Days() int {
	switch t {
	case TimeRange7Days:
		return 7
	case TimeRange90Days:
		return 90
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 3
}
