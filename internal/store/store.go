// Package store persists play history, sessions and derived statistics in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDedupWindow is the time span within which two apparently-identical
// plays are treated as one.
const DefaultDedupWindow = time.Minute

// Store wraps the SQLite database holding play history.
type Store struct {
	db          *sql.DB
	path        string
	dedupWindow time.Duration
}

// Open opens (creating if necessary) the history database at path.
// dedupWindow controls insert deduplication; zero or negative selects
// DefaultDedupWindow. Writes are serialized through a single connection.
func Open(path string, dedupWindow time.Duration) (*Store, error) {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection keeps the dedup check-then-insert race-free and
	// works for both file-backed and in-memory databases.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path, dedupWindow: dedupWindow}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initSchema creates the tables and applies additive migrations. The schema
// is versioned through the db_config table; older databases gain new columns
// via check-then-add so existing rows survive upgrades.
func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS media_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			album_artist TEXT,
			track_number INTEGER DEFAULT 0,
			app_name TEXT,
			app_id TEXT,
			timestamp INTEGER NOT NULL,
			duration INTEGER DEFAULT 0,
			position INTEGER DEFAULT 0,
			play_percentage INTEGER DEFAULT 0,
			playback_status TEXT,
			genre TEXT,
			year INTEGER DEFAULT 0,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_history_identity ON media_history(title, artist, app_name, timestamp);
		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON media_history(timestamp);

		CREATE TABLE IF NOT EXISTS playback_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_start INTEGER NOT NULL,
			session_end INTEGER NOT NULL,
			app_name TEXT,
			tracks_played INTEGER NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE TABLE IF NOT EXISTS db_config (
			key TEXT PRIMARY KEY,
			value TEXT,
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := s.migrate(); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO db_config (key, value, updated_at) VALUES ('version', '2', strftime('%s', 'now'))`,
	)
	if err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// migrate adds columns introduced after the first release to databases
// created before them. Columns are only ever added, never dropped or
// rewritten.
func (s *Store) migrate() error {
	rows, err := s.db.Query("PRAGMA table_info(media_history)")
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}

	if !columns["play_percentage"] {
		if _, err := s.db.Exec("ALTER TABLE media_history ADD COLUMN play_percentage INTEGER DEFAULT 0"); err != nil {
			return fmt.Errorf("failed to add play_percentage column: %w", err)
		}
	}

	return nil
}

// Counts returns the number of play and session rows, mainly for status
// output and tests.
func (s *Store) Counts(ctx context.Context) (plays, sessions int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_history`).Scan(&plays); err != nil {
		return 0, 0, fmt.Errorf("failed to count plays: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playback_sessions`).Scan(&sessions); err != nil {
		return 0, 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return plays, sessions, nil
}
