/*
service.go - User-facing activity operations

PURPOSE:
  Orchestrates the store, the rollup ledger, and the pure aggregation
  functions into the three operations the presentation layer consumes:
  the year activity map, the "today" rollup, and completion toggling
  with optimistic-update reconciliation.

TOGGLE FLOW:
  1. Ensure the day's rollup row exists (idempotent upsert).
  2. Insert the completion log.
     - success       -> increment the matching counter; now complete.
     - ErrConflict   -> the item was already complete: delete the log and
                        decrement instead; now incomplete.
  3. If the counter write fails after the log write succeeded, the log
     write is rolled back (best effort) and the error is surfaced. The
     caller reverts its optimistic UI state and calls RefreshRollup for
     the authoritative row — the single bounded re-fetch the error
     contract allows.

READ DEGRADATION:
  YearActivityMap prefers the rollup range read. If that fails it logs a
  warning and falls back to folding raw logs; visualization is
  non-critical, so unreadable days render as level 0 rather than failing
  the whole page. Write paths never degrade this way.
*/
package activity

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Service exposes the activity engine to presentation collaborators.
type Service struct {
	Store  Store
	Ledger *RollupLedger
	Log    *slog.Logger

	// Now is the injectable "today" used by TodayRollup. Defaults to Today.
	Now func() Date
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:  store,
		Ledger: NewRollupLedger(store),
		Log:    logger,
		Now:    Today,
	}
}

// ToggleResult reports the state after a completion toggle. Completed is the
// new state of the (entity, date) pair, so the UI can render without a
// follow-up read.
type ToggleResult struct {
	Completed bool
	Rollup    DailyRollup
}

// ToggleCompletion flips the completion state of one habit or task on one
// date and moves the day's rollup counter in lockstep.
func (s *Service) ToggleCompletion(ctx context.Context, userID UserID, entityID EntityID, kind EntityKind, day Date) (ToggleResult, error) {
	if userID == "" {
		return ToggleResult{}, ErrNotAuthenticated
	}
	if entityID == "" {
		return ToggleResult{}, &RangeError{Field: "entity_id", Value: ""}
	}
	if !kind.Valid() {
		return ToggleResult{}, ErrInvalidKind
	}
	if day.IsZero() {
		return ToggleResult{}, &RangeError{Field: "date", Value: ""}
	}

	if _, err := s.Ledger.Ensure(ctx, userID, day); err != nil {
		return ToggleResult{}, err
	}

	log := NewCompletionLog(userID, entityID, kind, day)
	_, err := s.Store.InsertCompletionLog(ctx, log)
	switch {
	case err == nil:
		rollup, err := s.Ledger.RecordCompletion(ctx, userID, day, kind)
		if err != nil {
			// Keep log and counter in lockstep: undo the log write so the
			// caller's re-fetch sees a consistent pre-toggle state.
			if delErr := s.Store.DeleteCompletionLog(ctx, userID, entityID, day); delErr != nil {
				s.Log.Warn("toggle rollback failed; counter and log drift until revert",
					"user", userID, "entity", entityID, "date", day.String(), "error", delErr)
			}
			return ToggleResult{}, err
		}
		return ToggleResult{Completed: true, Rollup: rollup}, nil

	case errors.Is(err, ErrConflict):
		// Already complete: this toggle un-marks it.
		if err := s.Store.DeleteCompletionLog(ctx, userID, entityID, day); err != nil {
			if errors.Is(err, ErrNotFound) {
				// Lost a race with another delete; the item is already
				// un-marked and that writer owns the decrement.
				rollup, rerr := s.RefreshRollup(ctx, userID, day)
				if rerr != nil {
					return ToggleResult{}, rerr
				}
				return ToggleResult{Completed: false, Rollup: rollup}, nil
			}
			return ToggleResult{}, err
		}
		rollup, err := s.Ledger.RevertCompletion(ctx, userID, day, kind)
		if err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{Completed: false, Rollup: rollup}, nil

	default:
		return ToggleResult{}, err
	}
}

// TodayRollup returns the current day's rollup, creating it if absent.
func (s *Service) TodayRollup(ctx context.Context, userID UserID) (DailyRollup, error) {
	return s.Ledger.Ensure(ctx, userID, s.Now())
}

// RefreshRollup re-fetches the authoritative rollup after a failed
// optimistic update. An absent row is authoritative too: it means zero
// completions, not an error.
func (s *Service) RefreshRollup(ctx context.Context, userID UserID, day Date) (DailyRollup, error) {
	if userID == "" {
		return DailyRollup{}, ErrNotAuthenticated
	}
	rollup, err := s.Store.GetRollup(ctx, userID, day)
	if errors.Is(err, ErrNotFound) {
		return DailyRollup{UserID: userID, Date: day}, nil
	}
	return rollup, err
}

// YearActivityMap returns the date -> intensity mapping for every active day
// of the year. Days absent from the map are level 0.
func (s *Service) YearActivityMap(ctx context.Context, userID UserID, year int) (map[Date]Intensity, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := validYear(year); err != nil {
		return nil, err
	}

	from, to := StartOfYear(year), EndOfYear(year)

	rollups, err := s.Store.ListRollups(ctx, userID, from, to)
	if err == nil {
		result := make(map[Date]Intensity, len(rollups))
		for _, r := range rollups {
			if level := Classify(r.HabitsCompleted, r.TasksCompleted); level != IntensityNone {
				result[r.Date] = level
			}
		}
		return result, nil
	}
	s.Log.Warn("rollup read failed, rebuilding year map from raw logs",
		"user", userID, "year", year, "error", err)

	// Backfill path: fold raw logs. Habit and task fetches are independent
	// store reads, so issue them concurrently.
	var habitLogs, taskLogs []CompletionLog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		kind := KindHabit
		var err error
		habitLogs, err = s.Store.ListCompletionLogs(gctx, userID, LogFilter{Kind: &kind, From: from, To: to})
		return err
	})
	g.Go(func() error {
		kind := KindTask
		var err error
		taskLogs, err = s.Store.ListCompletionLogs(gctx, userID, LogFilter{Kind: &kind, From: from, To: to})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildActivityMap(append(habitLogs, taskLogs...)), nil
}
