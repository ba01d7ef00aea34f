package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned (wrapped) when an id does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS exercises (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		duration    INTEGER NOT NULL CHECK (duration > 0),
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		is_cyclic    INTEGER NOT NULL DEFAULT 0,
		cycle_count  INTEGER NOT NULL DEFAULT 1 CHECK (cycle_count > 0),
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS workout_steps (
		workout_id        TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
		position          INTEGER NOT NULL,
		exercise_id       TEXT NOT NULL,
		name              TEXT NOT NULL,
		duration          INTEGER NOT NULL CHECK (duration > 0),
		repetition_index  INTEGER NOT NULL DEFAULT 1,
		repetition_count  INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (workout_id, position)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id    TEXT NOT NULL,
		workout_name  TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'running',
		work_seconds  INTEGER NOT NULL DEFAULT 0,
		started_at    TEXT NOT NULL,
		ended_at      TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('auto_rest',        'true'),
		('rest_duration',    '10'),
		('notify_enabled',   'true'),
		('notify_start',     'true'),
		('notify_exercise',  'true'),
		('notify_pause',     'true'),
		('notify_finish',    'true'),
		('notify_upcoming',  'true'),
		('sound',            'true');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// inTx runs fn in a transaction, rolling back when it fails.
func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// DefaultDBPath returns ~/.config/pipefit/pipefit.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "pipefit", "pipefit.db"), nil
}
