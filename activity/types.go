/*
Package activity is the core engine behind the ArcLoom dashboard's
daily-activity views.

PURPOSE:
  This package owns the non-trivial part of the product: turning raw
  completion events (a habit checked off, a task finished) into the
  per-day counters and intensity levels that the heatmap and stat
  widgets display, and keeping those counters consistent while several
  UI surfaces toggle completions concurrently.

KEY CONCEPTS IN THIS FILE (types.go):
  - CompletionLog: One atomic "marked done on date D" event
  - DailyRollup:   Cached per-(user, date) completion counters
  - EntityKind:    Whether a log belongs to a habit or a task
  - User/Entity IDs: Type-safe opaque identifiers

DESIGN PRINCIPLES:
  1. Logs are insert/delete only. Un-marking deletes the log; nothing
     is ever updated in place.
  2. The rollup is a denormalization of log state, never an independent
     source of truth. Every log insert/delete moves a counter in lockstep.
  3. The authenticated user is always an explicit parameter. Nothing in
     this package reads ambient session state.

SEE ALSO:
  - ledger.go:    Rollup state transitions (ensure/record/revert)
  - intensity.go: Classification of counts into heatmap levels
  - calendar.go:  Week-aligned grid construction
  - store.go:     Persistence interface
*/
package activity

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UserID identifies the owning user. All operations are scoped to one user;
// the backing store enforces the isolation boundary, this package just has
// to pass the ID on every call.
type UserID string

// EntityID references the habit or task a log belongs to. Opaque here —
// habit/task records live outside this core.
type EntityID string

// EntityKind distinguishes the two completion sources.
type EntityKind string

const (
	KindHabit EntityKind = "habit"
	KindTask  EntityKind = "task"
)

// Valid reports whether k is a known kind.
func (k EntityKind) Valid() bool {
	return k == KindHabit || k == KindTask
}

// =============================================================================
// COMPLETION LOG - One atomic completion event
// =============================================================================

// CompletionLog records that one habit or task was marked done on one date.
//
// INVARIANTS:
//   - At most one meaningful log per (user, entity, date). A duplicate
//     insert is rejected with ErrConflict.
//   - Never updated in place. Toggling off deletes the row.
type CompletionLog struct {
	ID         string
	UserID     UserID
	EntityID   EntityID
	Kind       EntityKind
	OccurredOn Date
	CreatedAt  time.Time
}

// NewCompletionLog builds a log for a completion that just happened.
func NewCompletionLog(userID UserID, entityID EntityID, kind EntityKind, day Date) CompletionLog {
	return CompletionLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		EntityID:   entityID,
		Kind:       kind,
		OccurredOn: day,
		CreatedAt:  time.Now().UTC(),
	}
}

// =============================================================================
// DAILY ROLLUP - Cached per-day counters
// =============================================================================

// DailyRollup is the one-row-per-(user, date) counter cache. Both counters
// must always equal the true CompletionLog counts for that date; they move
// only via atomic relative increments at the store boundary.
type DailyRollup struct {
	UserID          UserID
	Date            Date
	HabitsCompleted int
	TasksCompleted  int
	UpdatedAt       time.Time
}

// Total is the combined completion count, the input to Classify.
func (r DailyRollup) Total() int {
	return r.HabitsCompleted + r.TasksCompleted
}

// RollupDelta is a relative change to a rollup's counters. The store applies
// it atomically and floors the result at zero.
type RollupDelta struct {
	Habits int
	Tasks  int
}

// IsZero reports whether applying the delta changes nothing. A zero delta is
// still meaningful: it is the "ensure this row exists" primitive.
func (d RollupDelta) IsZero() bool {
	return d.Habits == 0 && d.Tasks == 0
}
