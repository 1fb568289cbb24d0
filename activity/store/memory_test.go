package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/arcloom/activity-engine/activity"
	"github.com/arcloom/activity-engine/activity/store"
)

func day(d int) activity.Date {
	return activity.NewDate(2024, time.March, d)
}

func TestMemory_InsertDuplicate_Conflict(t *testing.T) {
	// GIVEN: A completion already logged for (u1, habit-a, March 1)
	// WHEN: Inserting the same (entity, date) again
	// THEN: ErrConflict

	mem := store.NewMemory()
	ctx := context.Background()

	_, err := mem.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, day(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = mem.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, day(1)))
	if err != activity.ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Same entity on a different date is fine.
	_, err = mem.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, day(2)))
	if err != nil {
		t.Errorf("different date should insert: %v", err)
	}
}

func TestMemory_DeleteAbsent_NotFound(t *testing.T) {
	mem := store.NewMemory()

	err := mem.DeleteCompletionLog(context.Background(), "u1", "habit-a", day(1))
	if err != activity.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_ListCompletionLogs_Filters(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	seed := []activity.CompletionLog{
		activity.NewCompletionLog("u1", "h1", activity.KindHabit, day(1)),
		activity.NewCompletionLog("u1", "t1", activity.KindTask, day(2)),
		activity.NewCompletionLog("u1", "h2", activity.KindHabit, day(5)),
		activity.NewCompletionLog("u2", "h1", activity.KindHabit, day(1)), // other user
	}
	for _, log := range seed {
		if _, err := mem.InsertCompletionLog(ctx, log); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := mem.ListCompletionLogs(ctx, "u1", activity.LogFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 logs for u1, got %d (err=%v)", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].OccurredOn.Before(all[i-1].OccurredOn) {
			t.Fatal("logs not sorted by date")
		}
	}

	habit := activity.KindHabit
	habits, err := mem.ListCompletionLogs(ctx, "u1", activity.LogFilter{Kind: &habit})
	if err != nil || len(habits) != 2 {
		t.Fatalf("expected 2 habit logs, got %d (err=%v)", len(habits), err)
	}

	ranged, err := mem.ListCompletionLogs(ctx, "u1", activity.LogFilter{From: day(2), To: day(4)})
	if err != nil || len(ranged) != 1 {
		t.Fatalf("expected 1 log in range, got %d (err=%v)", len(ranged), err)
	}
}

func TestMemory_UpsertRollup_ZeroDeltaDoesNotReset(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	if _, err := mem.UpsertRollup(ctx, "u1", day(1), activity.RollupDelta{Habits: 2, Tasks: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rollup, err := mem.UpsertRollup(ctx, "u1", day(1), activity.RollupDelta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rollup.HabitsCompleted != 2 || rollup.TasksCompleted != 1 {
		t.Errorf("zero delta reset counts: got %d/%d", rollup.HabitsCompleted, rollup.TasksCompleted)
	}
}

func TestMemory_UpsertRollup_FloorsAtZero(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	rollup, err := mem.UpsertRollup(ctx, "u1", day(1), activity.RollupDelta{Habits: -5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rollup.HabitsCompleted != 0 {
		t.Errorf("expected floor at 0, got %d", rollup.HabitsCompleted)
	}
}

func TestMemory_ListRollups_RangeAndOrder(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	for _, d := range []int{5, 1, 3} {
		if _, err := mem.UpsertRollup(ctx, "u1", day(d), activity.RollupDelta{Tasks: 1}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rollups, err := mem.ListRollups(ctx, "u1", day(1), day(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rollups) != 2 {
		t.Fatalf("expected 2 rollups in range, got %d", len(rollups))
	}
	if !rollups[0].Date.Equal(day(1)) || !rollups[1].Date.Equal(day(3)) {
		t.Errorf("rollups out of order: %s, %s", rollups[0].Date, rollups[1].Date)
	}
}
