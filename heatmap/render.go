/*
Package heatmap turns a calendar grid and an activity map into paintable
cells.

PURPOSE:
  Presentation contract only. The renderer positions cells and looks up
  levels; it never counts completions or classifies intensity itself.
  Swapping in a fake activity map produces the expected grid with no
  changes here — that separation is load-bearing and tested.

DEFAULTS:
  Any date absent from the activity map paints at level 0. Future dates
  also paint at level 0 and carry the Future flag for distinct styling.
*/
package heatmap

import "github.com/arcloom/activity-engine/activity"

// Cell is one paintable square.
type Cell struct {
	Date       activity.Date
	Level      activity.Intensity
	Row        int
	Column     int
	Future     bool
	Blank      bool
	MonthStart bool
}

// RenderYear maps a year grid and an intensity lookup onto cells.
func RenderYear(grid []activity.CalendarDay, intensities map[activity.Date]activity.Intensity) []Cell {
	return render(grid, intensities)
}

// RenderMonth maps a month grid (including its leading blank placeholders)
// onto cells. Blank cells always paint at level 0.
func RenderMonth(grid []activity.CalendarDay, intensities map[activity.Date]activity.Intensity) []Cell {
	return render(grid, intensities)
}

func render(grid []activity.CalendarDay, intensities map[activity.Date]activity.Intensity) []Cell {
	cells := make([]Cell, len(grid))
	for i, day := range grid {
		cell := Cell{
			Date:       day.Date,
			Row:        day.GridRow,
			Column:     day.GridColumn,
			Future:     day.IsFuture,
			Blank:      day.Blank,
			MonthStart: day.MonthStart,
		}
		if !day.Blank {
			cell.Level = intensities[day.Date] // absent -> IntensityNone
		}
		cells[i] = cell
	}
	return cells
}
