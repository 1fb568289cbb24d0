/*
Package sqlite provides the SQLite-backed implementation of activity.Store.

PURPOSE:
  Production persistence for completion logs and daily rollups. The same
  patterns apply to a hosted PostgreSQL backend - only minor dialect
  differences.

KEY TABLES:
  completion_logs: One row per (user, entity, date) completion event.
                   Insert/delete only; the unique index makes duplicate
                   inserts fail, which the store maps to ErrConflict.
  daily_rollups:   One row per (user, date) with the completion counters.

ATOMIC UPSERT:
  UpsertRollup is a single INSERT .. ON CONFLICT DO UPDATE statement that
  applies the delta relative to the stored row and floors both counters
  at zero. SQLite executes the statement atomically, so concurrent
  ensures and increments converge without any application-side locking.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, a single
  writer at a time, better crash recovery.

SEE ALSO:
  - activity/store.go: Interface and concurrency contract
  - activity/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/arcloom/activity-engine/activity"
)

// Store implements activity.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at dbPath. Use ":memory:" for an in-memory
// database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes
	// writers the same way WAL would.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completion_logs (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		entity_kind TEXT NOT NULL CHECK (entity_kind IN ('habit', 'task')),
		occurred_on TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);

	-- At most one completion per (user, entity, date). Toggling is modeled
	-- as delete-or-insert, so this index is the idempotency guard.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_logs_unique_day
		ON completion_logs(user_id, entity_id, occurred_on);

	-- Year-map reads filter by kind and date range (hot path).
	CREATE INDEX IF NOT EXISTS idx_logs_user_kind_date
		ON completion_logs(user_id, entity_kind, occurred_on);

	CREATE TABLE IF NOT EXISTS daily_rollups (
		user_id          TEXT NOT NULL,
		date             TEXT NOT NULL,
		habits_completed INTEGER NOT NULL DEFAULT 0 CHECK (habits_completed >= 0),
		tasks_completed  INTEGER NOT NULL DEFAULT 0 CHECK (tasks_completed >= 0),
		updated_at       TEXT NOT NULL,
		PRIMARY KEY (user_id, date)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// COMPLETION LOGS
// =============================================================================

func (s *Store) ListCompletionLogs(ctx context.Context, userID activity.UserID, filter activity.LogFilter) ([]activity.CompletionLog, error) {
	query := `SELECT id, user_id, entity_id, entity_kind, occurred_on, created_at
		FROM completion_logs WHERE user_id = ?`
	args := []any{string(userID)}

	if filter.Kind != nil {
		query += ` AND entity_kind = ?`
		args = append(args, string(*filter.Kind))
	}
	if !filter.From.IsZero() {
		query += ` AND occurred_on >= ?`
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		query += ` AND occurred_on <= ?`
		args = append(args, filter.To.String())
	}
	query += ` ORDER BY occurred_on ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &activity.StoreError{Op: "list completion logs", Err: err}
	}
	defer rows.Close()

	var logs []activity.CompletionLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, &activity.StoreError{Op: "scan completion log", Err: err}
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, &activity.StoreError{Op: "list completion logs", Err: err}
	}
	return logs, nil
}

func (s *Store) InsertCompletionLog(ctx context.Context, log activity.CompletionLog) (activity.CompletionLog, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completion_logs (id, user_id, entity_id, entity_kind, occurred_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID, string(log.UserID), string(log.EntityID), string(log.Kind),
		log.OccurredOn.String(), log.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return activity.CompletionLog{}, activity.ErrConflict
		}
		return activity.CompletionLog{}, &activity.StoreError{Op: "insert completion log", Err: err}
	}
	return log, nil
}

func (s *Store) DeleteCompletionLog(ctx context.Context, userID activity.UserID, entityID activity.EntityID, day activity.Date) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM completion_logs WHERE user_id = ? AND entity_id = ? AND occurred_on = ?`,
		string(userID), string(entityID), day.String())
	if err != nil {
		return &activity.StoreError{Op: "delete completion log", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &activity.StoreError{Op: "delete completion log", Err: err}
	}
	if affected == 0 {
		return activity.ErrNotFound
	}
	return nil
}

// =============================================================================
// DAILY ROLLUPS
// =============================================================================

func (s *Store) GetRollup(ctx context.Context, userID activity.UserID, day activity.Date) (activity.DailyRollup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, date, habits_completed, tasks_completed, updated_at
		 FROM daily_rollups WHERE user_id = ? AND date = ?`,
		string(userID), day.String())

	rollup, err := scanRollup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.DailyRollup{}, activity.ErrNotFound
	}
	if err != nil {
		return activity.DailyRollup{}, &activity.StoreError{Op: "get rollup", Err: err}
	}
	return rollup, nil
}

func (s *Store) ListRollups(ctx context.Context, userID activity.UserID, from, to activity.Date) ([]activity.DailyRollup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, date, habits_completed, tasks_completed, updated_at
		 FROM daily_rollups WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		string(userID), from.String(), to.String())
	if err != nil {
		return nil, &activity.StoreError{Op: "list rollups", Err: err}
	}
	defer rows.Close()

	var rollups []activity.DailyRollup
	for rows.Next() {
		rollup, err := scanRollup(rows)
		if err != nil {
			return nil, &activity.StoreError{Op: "scan rollup", Err: err}
		}
		rollups = append(rollups, rollup)
	}
	if err := rows.Err(); err != nil {
		return nil, &activity.StoreError{Op: "list rollups", Err: err}
	}
	return rollups, nil
}

// UpsertRollup applies the delta in one statement. The ON CONFLICT branch
// increments relative to the stored counters (never the caller's view of
// them), and MAX(0, ...) enforces the floor on both branches.
func (s *Store) UpsertRollup(ctx context.Context, userID activity.UserID, day activity.Date, delta activity.RollupDelta) (activity.DailyRollup, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_rollups (user_id, date, habits_completed, tasks_completed, updated_at)
		 VALUES (?, ?, MAX(0, ?), MAX(0, ?), ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET
			habits_completed = MAX(0, habits_completed + ?),
			tasks_completed  = MAX(0, tasks_completed + ?),
			updated_at       = excluded.updated_at`,
		string(userID), day.String(), delta.Habits, delta.Tasks, now,
		delta.Habits, delta.Tasks)
	if err != nil {
		return activity.DailyRollup{}, &activity.StoreError{Op: "upsert rollup", Err: err}
	}
	return s.GetRollup(ctx, userID, day)
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(row scanner) (activity.CompletionLog, error) {
	var (
		log        activity.CompletionLog
		userID     string
		entityID   string
		kind       string
		occurredOn string
		createdAt  string
	)
	if err := row.Scan(&log.ID, &userID, &entityID, &kind, &occurredOn, &createdAt); err != nil {
		return activity.CompletionLog{}, err
	}
	day, err := activity.ParseDate(occurredOn)
	if err != nil {
		return activity.CompletionLog{}, err
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return activity.CompletionLog{}, err
	}
	log.UserID = activity.UserID(userID)
	log.EntityID = activity.EntityID(entityID)
	log.Kind = activity.EntityKind(kind)
	log.OccurredOn = day
	log.CreatedAt = created
	return log, nil
}

func scanRollup(row scanner) (activity.DailyRollup, error) {
	var (
		rollup    activity.DailyRollup
		userID    string
		date      string
		updatedAt string
	)
	if err := row.Scan(&userID, &date, &rollup.HabitsCompleted, &rollup.TasksCompleted, &updatedAt); err != nil {
		return activity.DailyRollup{}, err
	}
	day, err := activity.ParseDate(date)
	if err != nil {
		return activity.DailyRollup{}, err
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return activity.DailyRollup{}, err
	}
	rollup.UserID = activity.UserID(userID)
	rollup.Date = day
	rollup.UpdatedAt = updated
	return rollup, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
