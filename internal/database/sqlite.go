package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"winrecent/internal/database/migrations"
	"winrecent/internal/recent"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements recent.Store on a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	prober recent.TargetProber
}

// NewSQLiteStore opens the store at path (or ":memory:") and ensures its
// schema. prober decides exists_now for non-empty targets.
func NewSQLiteStore(path string, prober recent.TargetProber) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteStoreFromDB(db, prober)
	s.path = path

	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStoreFromDB wraps an existing connection without touching the schema.
func NewSQLiteStoreFromDB(db *sql.DB, prober recent.TargetProber) *SQLiteStore {
	if prober == nil {
		prober = noTargets{}
	}
	return &SQLiteStore{db: db, prober: prober}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
//
// The pool is limited to one connection: the process uses the store from a
// single goroutine, and an in-memory database only lives on its connection.
// Contention with another process is left to SQLite's file locking.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return db, nil
}

// EnsureSchema creates the tables and indexes if absent and adds any missing
// column to a store written by an earlier release. Existing rows are kept.
func (s *SQLiteStore) EnsureSchema() error {
	if err := migrations.EnsureSchema(s.db); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// Upsert records an observation keyed by (targetPath, openedAt).
func (s *SQLiteStore) Upsert(targetPath, displayName, source string, openedAt time.Time) (*recent.HistoryEntry, recent.UpsertOutcome, error) {
	ctx := context.Background()
	ts := recent.FormatOpenedAt(openedAt)
	existsNow := targetPath != "" && s.prober.Exists(targetPath)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, recent.UpsertUpdated, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	entry := &recent.HistoryEntry{
		TargetPath:  targetPath,
		DisplayName: displayName,
		Source:      source,
		OpenedAt:    openedAt,
		ExistsNow:   existsNow,
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM items WHERE target_path = ? AND opened_at = ? ORDER BY id LIMIT 1",
		targetPath, ts,
	).Scan(&id)

	outcome := recent.UpsertUpdated
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			"INSERT INTO items (target_path, display_name, source, opened_at, exists_now) VALUES (?, ?, ?, ?, ?)",
			targetPath, displayName, source, ts, boolToInt(existsNow),
		)
		if err != nil {
			return nil, outcome, fmt.Errorf("inserting item: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, outcome, fmt.Errorf("reading inserted id: %w", err)
		}
		outcome = recent.UpsertInserted
	case err != nil:
		return nil, outcome, fmt.Errorf("finding item: %w", err)
	default:
		_, err := tx.ExecContext(ctx,
			"UPDATE items SET display_name = ?, source = ?, exists_now = ? WHERE id = ?",
			displayName, source, boolToInt(existsNow), id,
		)
		if err != nil {
			return nil, outcome, fmt.Errorf("updating item %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, outcome, fmt.Errorf("committing transaction: %w", err)
	}

	entry.ID = id
	return entry, outcome, nil
}

// Query returns items within opts, newest first.
func (s *SQLiteStore) Query(opts recent.QueryOptions) ([]*recent.HistoryEntry, error) {
	var (
		where []string
		args  []any
	)
	if !opts.From.IsZero() {
		where = append(where, "julianday(opened_at) >= julianday(?)")
		args = append(args, recent.FormatOpenedAt(opts.From))
	}
	if !opts.To.IsZero() {
		where = append(where, "julianday(opened_at) <= julianday(?)")
		args = append(args, recent.FormatOpenedAt(opts.To))
	}

	query := "SELECT id, target_path, display_name, source, opened_at, exists_now FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY julianday(opened_at) DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var entries []*recent.HistoryEntry
	for rows.Next() {
		var (
			e                            recent.HistoryEntry
			target, name, source, opened sql.NullString
			exists                       sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &target, &name, &source, &opened, &exists); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		e.TargetPath = target.String
		e.DisplayName = name.String
		e.Source = source.String
		e.ExistsNow = exists.Valid && exists.Int64 != 0
		if e.OpenedAt, err = recent.ParseOpenedAt(opened.String); err != nil {
			return nil, fmt.Errorf("item %d: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored items.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Scan run tracking

func (s *SQLiteStore) CreateScanRun(run *recent.ScanRun) error {
	_, err := s.db.Exec(
		"INSERT INTO scan_runs (id, mode, started_at, status) VALUES (?, ?, ?, ?)",
		run.ID, run.Mode, formatRunTime(run.StartedAt), run.Status,
	)
	if err != nil {
		return fmt.Errorf("creating scan run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishScanRun(run *recent.ScanRun) error {
	_, err := s.db.Exec(
		`UPDATE scan_runs
		    SET finished_at = ?, observed = ?, inserted = ?, failures = ?, status = ?
		  WHERE id = ?`,
		formatRunTime(run.FinishedAt), run.Observed, run.Inserted, run.Failures, run.Status, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing scan run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListScanRuns(limit int) ([]*recent.ScanRun, error) {
	query := `SELECT id, mode, started_at, finished_at, observed, inserted, failures, status
	            FROM scan_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*recent.ScanRun
	for rows.Next() {
		var (
			r        recent.ScanRun
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Mode, &started, &finished, &r.Observed, &r.Inserted, &r.Failures, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning scan run: %w", err)
		}
		if r.StartedAt, err = parseRunTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseRunTime(finished.String); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading scan runs: %w", err)
	}
	return runs, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// noTargets reports every target as missing.
type noTargets struct{}

func (noTargets) Exists(string) bool { return false }

// Compile-time check that SQLiteStore implements recent.Store
var _ recent.Store = (*SQLiteStore)(nil)
