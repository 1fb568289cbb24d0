// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arcloom/activity-engine/activity"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements activity.Store with mutex-guarded maps. The mutex gives
// UpsertRollup the same atomic relative-increment semantics the SQLite store
// gets from a single upsert statement.
type Memory struct {
	mu      sync.RWMutex
	logs    map[logKey]activity.CompletionLog
	rollups map[rollupKey]activity.DailyRollup
}

type logKey struct {
	UserID   activity.UserID
	EntityID activity.EntityID
	Day      string
}

type rollupKey struct {
	UserID activity.UserID
	Day    string
}

func NewMemory() *Memory {
	return &Memory{
		logs:    make(map[logKey]activity.CompletionLog),
		rollups: make(map[rollupKey]activity.DailyRollup),
	}
}

func (m *Memory) ListCompletionLogs(_ context.Context, userID activity.UserID, filter activity.LogFilter) ([]activity.CompletionLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []activity.CompletionLog
	for k, log := range m.logs {
		if k.UserID != userID {
			continue
		}
		if filter.Matches(log) {
			result = append(result, log)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].OccurredOn.Equal(result[j].OccurredOn) {
			return result[i].OccurredOn.Before(result[j].OccurredOn)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) InsertCompletionLog(_ context.Context, log activity.CompletionLog) (activity.CompletionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := logKey{UserID: log.UserID, EntityID: log.EntityID, Day: log.OccurredOn.String()}
	if _, exists := m.logs[k]; exists {
		return activity.CompletionLog{}, activity.ErrConflict
	}
	m.logs[k] = log
	return log, nil
}

func (m *Memory) DeleteCompletionLog(_ context.Context, userID activity.UserID, entityID activity.EntityID, day activity.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := logKey{UserID: userID, EntityID: entityID, Day: day.String()}
	if _, exists := m.logs[k]; !exists {
		return activity.ErrNotFound
	}
	delete(m.logs, k)
	return nil
}

func (m *Memory) GetRollup(_ context.Context, userID activity.UserID, day activity.Date) (activity.DailyRollup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rollup, exists := m.rollups[rollupKey{UserID: userID, Day: day.String()}]
	if !exists {
		return activity.DailyRollup{}, activity.ErrNotFound
	}
	return rollup, nil
}

func (m *Memory) ListRollups(_ context.Context, userID activity.UserID, from, to activity.Date) ([]activity.DailyRollup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []activity.DailyRollup
	for k, rollup := range m.rollups {
		if k.UserID != userID {
			continue
		}
		if rollup.Date.Before(from) || rollup.Date.After(to) {
			continue
		}
		result = append(result, rollup)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// UpsertRollup applies delta under the write lock: insert-if-absent, then a
// relative increment floored at zero. Racing zero-delta upserts converge on
// one row without resetting counters.
func (m *Memory) UpsertRollup(_ context.Context, userID activity.UserID, day activity.Date, delta activity.RollupDelta) (activity.DailyRollup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := rollupKey{UserID: userID, Day: day.String()}
	rollup, exists := m.rollups[k]
	if !exists {
		rollup = activity.DailyRollup{UserID: userID, Date: day}
	}
	rollup.HabitsCompleted = floorZero(rollup.HabitsCompleted + delta.Habits)
	rollup.TasksCompleted = floorZero(rollup.TasksCompleted + delta.Tasks)
	rollup.UpdatedAt = time.Now().UTC()
	m.rollups[k] = rollup
	return rollup, nil
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
