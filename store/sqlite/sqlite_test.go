package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcloom/activity-engine/activity"
	"github.com/arcloom/activity-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func march(d int) activity.Date {
	return activity.NewDate(2024, time.March, d)
}

// =============================================================================
// COMPLETION LOGS
// =============================================================================

func TestSQLite_InsertDuplicate_Conflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, march(1)))
	require.NoError(t, err)

	_, err = store.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, march(1)))
	assert.ErrorIs(t, err, activity.ErrConflict)

	// Different user, same entity+date: allowed.
	_, err = store.InsertCompletionLog(ctx, activity.NewCompletionLog("u2", "habit-a", activity.KindHabit, march(1)))
	assert.NoError(t, err)
}

func TestSQLite_DeleteLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, march(1)))
	require.NoError(t, err)

	require.NoError(t, store.DeleteCompletionLog(ctx, "u1", "habit-a", march(1)))
	assert.ErrorIs(t, store.DeleteCompletionLog(ctx, "u1", "habit-a", march(1)), activity.ErrNotFound)

	// Deleted, so the same (entity, date) can be re-inserted.
	_, err = store.InsertCompletionLog(ctx, activity.NewCompletionLog("u1", "habit-a", activity.KindHabit, march(1)))
	assert.NoError(t, err)
}

func TestSQLite_ListLogs_FiltersAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []activity.CompletionLog{
		activity.NewCompletionLog("u1", "h1", activity.KindHabit, march(3)),
		activity.NewCompletionLog("u1", "t1", activity.KindTask, march(1)),
		activity.NewCompletionLog("u1", "h2", activity.KindHabit, march(8)),
	}
	for _, log := range seed {
		_, err := store.InsertCompletionLog(ctx, log)
		require.NoError(t, err)
	}

	all, err := store.ListCompletionLogs(ctx, "u1", activity.LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].OccurredOn.Equal(march(1)), "logs must be date-ascending")

	habit := activity.KindHabit
	habits, err := store.ListCompletionLogs(ctx, "u1", activity.LogFilter{Kind: &habit})
	require.NoError(t, err)
	assert.Len(t, habits, 2)

	ranged, err := store.ListCompletionLogs(ctx, "u1", activity.LogFilter{From: march(2), To: march(5)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, activity.EntityID("h1"), ranged[0].EntityID)
}

func TestSQLite_LogRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := activity.NewCompletionLog("u1", "h1", activity.KindHabit, march(3))
	_, err := store.InsertCompletionLog(ctx, in)
	require.NoError(t, err)

	out, err := store.ListCompletionLogs(ctx, "u1", activity.LogFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in.ID, out[0].ID)
	assert.Equal(t, in.Kind, out[0].Kind)
	assert.True(t, in.OccurredOn.Equal(out[0].OccurredOn))
}

// =============================================================================
// DAILY ROLLUPS
// =============================================================================

func TestSQLite_UpsertRollup_EnsureThenIncrement(t *testing.T) {
	// GIVEN: An absent rollup
	// WHEN: Zero-delta ensure, an increment, then another zero-delta ensure
	// THEN: One row whose counts survive the second ensure

	store := newTestStore(t)
	ctx := context.Background()

	rollup, err := store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{})
	require.NoError(t, err)
	assert.Equal(t, 0, rollup.Total())

	rollup, err = store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{Habits: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, rollup.HabitsCompleted)

	rollup, err = store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{})
	require.NoError(t, err)
	assert.Equal(t, 1, rollup.HabitsCompleted, "ensure must not reset counts")

	rollups, err := store.ListRollups(ctx, "u1", march(1), march(31))
	require.NoError(t, err)
	assert.Len(t, rollups, 1)
}

func TestSQLite_UpsertRollup_FloorsAtZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Decrement on a fresh row floors at insert time.
	rollup, err := store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{Habits: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, rollup.HabitsCompleted)

	// Decrement below zero on an existing row floors at update time.
	_, err = store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{Tasks: 1})
	require.NoError(t, err)
	rollup, err = store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{Tasks: -3})
	require.NoError(t, err)
	assert.Equal(t, 0, rollup.TasksCompleted)
}

func TestSQLite_UpsertRollup_ConcurrentIncrements(t *testing.T) {
	// GIVEN: Many goroutines incrementing the same (user, date)
	// WHEN: They all complete
	// THEN: Every increment landed (single-statement atomicity)

	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{Tasks: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rollup, err := store.GetRollup(ctx, "u1", march(1))
	require.NoError(t, err)
	assert.Equal(t, 10, rollup.TasksCompleted)
}

func TestSQLite_GetRollup_Absent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRollup(context.Background(), "u1", march(1))
	assert.ErrorIs(t, err, activity.ErrNotFound)
}

func TestSQLite_ListRollups_UserScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertRollup(ctx, "u1", march(1), activity.RollupDelta{Habits: 1})
	require.NoError(t, err)
	_, err = store.UpsertRollup(ctx, "u2", march(1), activity.RollupDelta{Habits: 5})
	require.NoError(t, err)

	rollups, err := store.ListRollups(ctx, "u1", march(1), march(31))
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.Equal(t, activity.UserID("u1"), rollups[0].UserID)
	assert.Equal(t, 1, rollups[0].HabitsCompleted)
}
