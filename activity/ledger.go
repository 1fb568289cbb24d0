/*
ledger.go - Daily rollup ledger

PURPOSE:
  Keeps the DailyRollup counters consistent with CompletionLog existence.
  Each transition delegates to the store's atomic UpsertRollup primitive,
  so concurrent callers (two habit toggles for the same date fired from
  independent surfaces, two pages racing to create "today") never clobber
  each other and never need client-side locking.

STATE MACHINE per (user, date):
  Absent --ensure--> Present(0,0)
  Present(h,t) --record(habit)--> Present(h+1,t)
  Present(h,t) --revert(habit)--> Present(max(0,h-1),t)
  (and symmetrically for tasks)

FAILURE SEMANTICS:
  A failed store write is returned to the caller untouched. The ledger
  never retries silently; the caller reverts any optimistic UI state and
  re-fetches the authoritative rollup (Service.RefreshRollup).

SEE ALSO:
  - store.go:   The UpsertRollup contract this relies on
  - service.go: Toggle orchestration pairing log writes with these calls
*/
package activity

import "context"

// RollupLedger maintains per-(user, date) completion counters.
type RollupLedger struct {
	Store Store
}

func NewRollupLedger(store Store) *RollupLedger {
	return &RollupLedger{Store: store}
}

// Ensure creates the rollup for (user, date) if absent and returns it.
// Idempotent: a second call — sequential or concurrent — neither duplicates
// the row nor resets counters another writer already incremented.
func (l *RollupLedger) Ensure(ctx context.Context, userID UserID, day Date) (DailyRollup, error) {
	if err := l.check(userID, day); err != nil {
		return DailyRollup{}, err
	}
	return l.Store.UpsertRollup(ctx, userID, day, RollupDelta{})
}

// RecordCompletion atomically increments the counter for kind by one.
func (l *RollupLedger) RecordCompletion(ctx context.Context, userID UserID, day Date, kind EntityKind) (DailyRollup, error) {
	return l.apply(ctx, userID, day, kind, +1)
}

// RevertCompletion atomically decrements the counter for kind by one,
// floored at zero. The floor guards against a decrement arriving after the
// counters were already reset externally (e.g. a delete-all).
func (l *RollupLedger) RevertCompletion(ctx context.Context, userID UserID, day Date, kind EntityKind) (DailyRollup, error) {
	return l.apply(ctx, userID, day, kind, -1)
}

func (l *RollupLedger) apply(ctx context.Context, userID UserID, day Date, kind EntityKind, n int) (DailyRollup, error) {
	if err := l.check(userID, day); err != nil {
		return DailyRollup{}, err
	}
	var delta RollupDelta
	switch kind {
	case KindHabit:
		delta.Habits = n
	case KindTask:
		delta.Tasks = n
	default:
		return DailyRollup{}, ErrInvalidKind
	}
	return l.Store.UpsertRollup(ctx, userID, day, delta)
}

func (l *RollupLedger) check(userID UserID, day Date) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if day.IsZero() {
		return &RangeError{Field: "date", Value: ""}
	}
	return nil
}
