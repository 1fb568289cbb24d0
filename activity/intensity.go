/*
intensity.go - Activity intensity classification

PURPOSE:
  Converts per-day completion counts into the ordinal intensity level a
  heatmap cell is painted with. Pure read-time transforms: nothing here
  touches the store or the clock.

THRESHOLD POLICY:
  total = habits + tasks
    0      -> none
    1..2   -> minimal
    3..5   -> moderate
    6+     -> high
  This is the rollup-driven policy from the yearly heatmap; the older
  4-month widget used a different scale and was retired (see DESIGN.md).

EQUIVALENCE:
  BuildActivityMap (raw-log path) and classifying a DailyRollup's counts
  (ledger path) must agree for any date where both exist. The ledger keeps
  counters in lockstep with log inserts/deletes, so both paths feed the
  same totals into Classify. Tests assert this property directly.
*/
package activity

// Intensity is the ordinal activity level of a single day. Derived on read,
// never persisted.
type Intensity int

const (
	IntensityNone Intensity = iota
	IntensityMinimal
	IntensityModerate
	IntensityHigh
)

func (i Intensity) String() string {
	switch i {
	case IntensityNone:
		return "none"
	case IntensityMinimal:
		return "minimal"
	case IntensityModerate:
		return "moderate"
	case IntensityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Classify maps a day's completion counts to its intensity level.
func Classify(habitsCompleted, tasksCompleted int) Intensity {
	total := habitsCompleted + tasksCompleted
	switch {
	case total <= 0:
		return IntensityNone
	case total <= 2:
		return IntensityMinimal
	case total <= 5:
		return IntensityModerate
	default:
		return IntensityHigh
	}
}

// BuildActivityMap folds raw completion logs into per-day intensities. This
// is the backfill/historical read path for dates that predate the rollup
// cache.
//
// A log is meaningful at most once per (entity, date); duplicates that an
// older store may have accumulated are ignored rather than double-counted.
func BuildActivityMap(logs []CompletionLog) map[Date]Intensity {
	type dayKey struct {
		entity EntityID
		date   Date
	}
	seen := make(map[dayKey]bool, len(logs))

	type counts struct{ habits, tasks int }
	perDay := make(map[Date]counts)

	for _, log := range logs {
		k := dayKey{entity: log.EntityID, date: log.OccurredOn}
		if seen[k] {
			continue
		}
		seen[k] = true

		c := perDay[log.OccurredOn]
		switch log.Kind {
		case KindHabit:
			c.habits++
		case KindTask:
			c.tasks++
		default:
			continue
		}
		perDay[log.OccurredOn] = c
	}

	result := make(map[Date]Intensity, len(perDay))
	for day, c := range perDay {
		result[day] = Classify(c.habits, c.tasks)
	}
	return result
}
