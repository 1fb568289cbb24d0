/*
store.go - Persistence interface for logs and rollups

PURPOSE:
  Defines the boundary between the activity engine and the backing data
  service. Implementations exist for SQLite (store/sqlite, production)
  and memory (activity/store, tests/dev).

CONCURRENCY CONTRACT:
  UpsertRollup is the single concurrency-control primitive in this core.
  It must apply the delta atomically relative to the stored row — never
  read-then-write from a stale value — and must floor both counters at
  zero. A zero delta is the "ensure the row exists" operation: it creates
  Present(0,0) if absent and must NOT overwrite counters that another
  writer already incremented. Two racing zero-delta upserts converge on
  exactly one row.

ERROR MAPPING:
  Implementations translate their backend's failures into the sentinels
  in errors.go: duplicate log insert -> ErrConflict, missing row ->
  ErrNotFound, transient backend failure -> wrapped ErrStoreUnavailable.
*/
package activity

import "context"

// LogFilter narrows a completion-log listing. Zero values mean "no bound".
type LogFilter struct {
	Kind *EntityKind
	From Date
	To   Date
}

// Matches reports whether a log passes the filter. Shared by in-memory
// implementations and tests.
func (f LogFilter) Matches(log CompletionLog) bool {
	if f.Kind != nil && log.Kind != *f.Kind {
		return false
	}
	if !f.From.IsZero() && log.OccurredOn.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && log.OccurredOn.After(f.To) {
		return false
	}
	return true
}

// Store handles persistence of completion logs and daily rollups.
type Store interface {
	// ListCompletionLogs returns the user's logs matching the filter,
	// ordered by date ascending.
	ListCompletionLogs(ctx context.Context, userID UserID, filter LogFilter) ([]CompletionLog, error)

	// InsertCompletionLog persists a new log. Returns ErrConflict if one
	// already exists for (user, entity, date).
	InsertCompletionLog(ctx context.Context, log CompletionLog) (CompletionLog, error)

	// DeleteCompletionLog removes the log for (user, entity, date).
	// Returns ErrNotFound if absent.
	DeleteCompletionLog(ctx context.Context, userID UserID, entityID EntityID, day Date) error

	// GetRollup returns the rollup for (user, date), or ErrNotFound.
	GetRollup(ctx context.Context, userID UserID, day Date) (DailyRollup, error)

	// ListRollups returns the user's rollups with From <= date <= To,
	// ordered by date ascending.
	ListRollups(ctx context.Context, userID UserID, from, to Date) ([]DailyRollup, error)

	// UpsertRollup atomically applies delta to the (user, date) rollup,
	// creating Present(0,0) first if absent, flooring counters at zero,
	// and returns the resulting row.
	UpsertRollup(ctx context.Context, userID UserID, day Date, delta RollupDelta) (DailyRollup, error)
}
