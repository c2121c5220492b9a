package calendar

import (
	"fmt"
	"time"
)

// Grid dimensions.
const (
	DaysPerWeek  = 7
	WeeksPerGrid = 6
	CellsPerGrid = DaysPerWeek * WeeksPerGrid
)

// CellKind records where a grid cell came from.
type CellKind int

const (
	// CellBlank is an empty cell.
	CellBlank CellKind = iota
	// CellDay is a day of the requested month.
	CellDay
	// CellFiller pads the grid to six rows and is not a day of the requested month.
	CellFiller
)

// Cell is one position in the grid. Day is 0 for blank cells.
type Cell struct {
	Kind CellKind
	Day  int
}

// IsBlank reports whether the cell shows nothing.
func (c Cell) IsBlank() bool { return c.Kind == CellBlank }

// InMonth reports whether the cell is a day of the grid's own month.
func (c Cell) InMonth() bool { return c.Kind == CellDay }

// Options control grid layout.
type Options struct {
	FirstWeekday Weekday
	Filler       FillerMode
}

// DefaultOptions returns Monday-first weeks with next-month filler.
func DefaultOptions() Options {
	return Options{FirstWeekday: Monday, Filler: FillerNextMonth}
}

// MonthGrid is an immutable six-week layout of one month.
type MonthGrid struct {
	Year         int
	Month        int
	FirstWeekday Weekday
	Filler       FillerMode
	Weeks        [WeeksPerGrid][DaysPerWeek]Cell
	// DayCount is the number of cells holding days of Month; filler is excluded.
	DayCount int
}

// Build lays out month of year as a 6x7 grid.
func Build(year, month int, opts Options) (MonthGrid, error) {
	if err := validate(year, month); err != nil {
		return MonthGrid{}, err
	}
	if !opts.FirstWeekday.Valid() {
		return MonthGrid{}, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(opts.FirstWeekday))
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := opts.FirstWeekday.Column(first.Weekday())
	days := DaysIn(year, month)

	cells := make([]Cell, 0, CellsPerGrid+DaysPerWeek)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{Kind: CellBlank})
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, Cell{Kind: CellDay, Day: day})
	}

	if opts.Filler == FillerLegacy {
		for len(cells)%DaysPerWeek != 0 {
			cells = append(cells, Cell{Kind: CellBlank})
		}
	}
	for next := 1; len(cells) < CellsPerGrid; next++ {
		cells = append(cells, Cell{Kind: CellFiller, Day: next})
	}
	if len(cells) > CellsPerGrid {
		cells = cells[:CellsPerGrid]
	}

	g := MonthGrid{
		Year:         year,
		Month:        month,
		FirstWeekday: opts.FirstWeekday,
		Filler:       opts.Filler,
	}
	for i, c := range cells {
		g.Weeks[i/DaysPerWeek][i%DaysPerWeek] = c
		if c.Kind == CellDay {
			g.DayCount++
		}
	}
	return g, nil
}

// MustBuild is Build for inputs known to be valid; it panics otherwise.
func MustBuild(year, month int, opts Options) MonthGrid {
	g, err := Build(year, month, opts)
	if err != nil {
		panic(err)
	}
	return g
}

// Cell returns the cell at row, col.
func (g MonthGrid) Cell(row, col int) Cell {
	return g.Weeks[row][col]
}

// Rows returns the grid as a slice of rows.
func (g MonthGrid) Rows() [][]Cell {
	rows := make([][]Cell, WeeksPerGrid)
	for i := range g.Weeks {
		row := g.Weeks[i]
		rows[i] = row[:]
	}
	return rows
}

// InMonthDays returns the days of Month in grid order.
func (g MonthGrid) InMonthDays() []int {
	days := make([]int, 0, g.DayCount)
	for _, week := range g.Weeks {
		for _, c := range week {
			if c.Kind == CellDay {
				days = append(days, c.Day)
			}
		}
	}
	return days
}

// Leading returns the number of blank cells before day 1.
func (g MonthGrid) Leading() int {
	for i, c := range g.Weeks[0] {
		if c.Kind != CellBlank {
			return i
		}
	}
	return DaysPerWeek
}

// KeyFor returns the date key a cell stands for. Blank cells and legacy filler
// cells have no real date.
func (g MonthGrid) KeyFor(c Cell) (string, bool) {
	switch c.Kind {
	case CellDay:
		return DateKey(g.Year, g.Month, c.Day), true
	case CellFiller:
		if g.Filler != FillerNextMonth {
			return "", false
		}
		y, m := Shift(g.Year, g.Month, 1)
		return DateKey(y, m, c.Day), true
	default:
		return "", false
	}
}

// Title returns e.g. "May 2023".
func (g MonthGrid) Title() string {
	return fmt.Sprintf("%s %d", time.Month(g.Month), g.Year)
}
