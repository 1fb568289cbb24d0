/*
calendar.go - Week-aligned grid construction

PURPOSE:
  Produces the day-by-day, week-aligned grids behind the yearly heatmap
  and the month calendar widget. Pure layout math: no activity data is
  consulted here, and "today" is injected by the caller so grids are
  reproducible in tests.

LAYOUT:
  Year grids follow the heatmap convention: each month is a block of
  weekday rows (GridRow 0..6 top-to-bottom from the week start) and
  week columns (GridColumn), with month blocks occupying disjoint
  column ranges. Month grids are the familiar calendar convention:
  weeks as rows, weekdays as columns, with leading blank cells so day 1
  lands under its weekday header.

EDGE CASES:
  - Leap years produce 366 days.
  - All 7 possible starting weekdays of a month align correctly.
  - Years outside [1, 9999] and non-first-of-month starts are rejected
    with ErrInvalidRange.
*/
package activity

import "time"

// =============================================================================
// WEEK START
// =============================================================================

// WeekStart selects which weekday begins a grid row/column.
type WeekStart int

const (
	WeekStartMonday WeekStart = iota
	WeekStartSunday
)

// ParseWeekStart maps the wire value ("monday"/"sunday", empty = monday).
func ParseWeekStart(s string) (WeekStart, error) {
	switch s {
	case "", "monday":
		return WeekStartMonday, nil
	case "sunday":
		return WeekStartSunday, nil
	default:
		return 0, &RangeError{Field: "week_start", Value: s}
	}
}

func (ws WeekStart) valid() bool {
	return ws == WeekStartMonday || ws == WeekStartSunday
}

// slot returns the 0..6 offset of a weekday within a week that begins on ws.
func (ws WeekStart) slot(wd time.Weekday) int {
	if ws == WeekStartSunday {
		return int(wd)
	}
	// Monday-first: Mon=0 .. Sun=6
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// =============================================================================
// CALENDAR DAY - One grid cell
// =============================================================================

// CalendarDay positions one date inside a week-aligned grid.
//
// Weekday is always the Monday-first index (0=Monday .. 6=Sunday) regardless
// of the grid's week start; GridRow/GridColumn carry the week-start-dependent
// placement.
type CalendarDay struct {
	Date       Date
	Weekday    int
	IsFuture   bool
	Blank      bool // leading placeholder cell, month grids only
	MonthStart bool // first real day of its month, for boundary labels
	GridRow    int
	GridColumn int
}

// =============================================================================
// GRID BUILDERS
// =============================================================================

// BuildYearGrid lays out every day of year exactly once, ascending, as month
// blocks of weekday rows and week columns. No placeholder cells are emitted;
// alignment is carried by each day's coordinates.
func BuildYearGrid(year int, weekStart WeekStart, today Date) ([]CalendarDay, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	if !weekStart.valid() {
		return nil, &RangeError{Field: "week_start", Value: "unknown"}
	}

	var days []CalendarDay
	baseColumn := 0
	for month := time.January; month <= time.December; month++ {
		first := StartOfMonth(year, month)
		offset := weekStart.slot(first.Weekday())
		count := DaysIn(year, month)

		for i := 0; i < count; i++ {
			d := first.AddDays(i)
			slot := offset + i
			days = append(days, CalendarDay{
				Date:       d,
				Weekday:    d.ISOWeekday(),
				IsFuture:   d.After(today),
				MonthStart: i == 0,
				GridRow:    slot % 7,
				GridColumn: baseColumn + slot/7,
			})
		}
		// Next month starts its own column block.
		baseColumn += (offset + count + 6) / 7
	}
	return days, nil
}

// BuildMonthGrid lays out one month in row-major calendar orientation
// (weeks as rows), including leading blank cells so the first day of the
// month lands in its correct weekday column.
func BuildMonthGrid(monthStart Date, weekStart WeekStart, today Date) ([]CalendarDay, error) {
	if monthStart.IsZero() || monthStart.Day() != 1 {
		return nil, &RangeError{Field: "month_start", Value: monthStart.String()}
	}
	if err := validYear(monthStart.Year()); err != nil {
		return nil, err
	}
	if !weekStart.valid() {
		return nil, &RangeError{Field: "week_start", Value: "unknown"}
	}

	offset := weekStart.slot(monthStart.Weekday())
	count := DaysIn(monthStart.Year(), monthStart.Month())

	cells := make([]CalendarDay, 0, offset+count)
	for i := 0; i < offset; i++ {
		cells = append(cells, CalendarDay{
			Blank:      true,
			GridRow:    0,
			GridColumn: i,
		})
	}
	for i := 0; i < count; i++ {
		d := monthStart.AddDays(i)
		slot := offset + i
		cells = append(cells, CalendarDay{
			Date:       d,
			Weekday:    d.ISOWeekday(),
			IsFuture:   d.After(today),
			MonthStart: i == 0,
			GridRow:    slot / 7,
			GridColumn: slot % 7,
		})
	}
	return cells, nil
}
