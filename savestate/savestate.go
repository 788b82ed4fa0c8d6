// Package savestate records run history and population events in SQLite.
package savestate

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for run persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		initial_size INTEGER NOT NULL,
		final_size INTEGER,
		peak_size INTEGER,
		ticks INTEGER
	);

	CREATE TABLE IF NOT EXISTS population_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		old_size INTEGER NOT NULL,
		new_size INTEGER NOT NULL,
		cause TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_population_events_run ON population_events(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// PopulationEvent is one recorded size change within a run.
type PopulationEvent struct {
	Tick    int32  `db:"tick"`
	OldSize int    `db:"old_size"`
	NewSize int    `db:"new_size"`
	Cause   string `db:"cause"`
}

// BeginRun inserts a new run row and returns its ID.
func (db *DB) BeginRun(seed int64, initialSize int) (string, error) {
	id := uuid.NewString()
	startedAt := time.Now().UTC().Format(time.RFC3339)

	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, started_at, initial_size) VALUES (?, ?, ?, ?)",
		id, seed, startedAt, initialSize,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordChange appends one population event to a run.
func (db *DB) RecordChange(runID string, tick int32, oldSize, newSize int, cause string) error {
	_, err := db.conn.Exec(
		"INSERT INTO population_events (run_id, tick, old_size, new_size, cause) VALUES (?, ?, ?, ?, ?)",
		runID, tick, oldSize, newSize, cause,
	)
	if err != nil {
		return fmt.Errorf("insert population event: %w", err)
	}
	return nil
}

// FinishRun marks a run complete and records its final statistics.
func (db *DB) FinishRun(runID string, finalSize, peakSize int, ticks int32) error {
	finishedAt := time.Now().UTC().Format(time.RFC3339)

	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, final_size = ?, peak_size = ?, ticks = ? WHERE id = ?",
		finishedAt, finalSize, peakSize, ticks, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LastFinalSize returns the final population of the most recently
// finished run. ok is false when no finished run exists.
func (db *DB) LastFinalSize() (size int, ok bool, err error) {
	err = db.conn.Get(&size,
		"SELECT final_size FROM runs WHERE finished_at IS NOT NULL ORDER BY finished_at DESC, id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query last run: %w", err)
	}
	return size, true, nil
}

// RunEvents returns all population events for a run in insertion order.
func (db *DB) RunEvents(runID string) ([]PopulationEvent, error) {
	var events []PopulationEvent
	err := db.conn.Select(&events,
		"SELECT tick, old_size, new_size, cause FROM population_events WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	return events, nil
}
