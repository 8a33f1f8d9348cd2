package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/cragscan/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "cragscan.db"

// ErrUnknownKind is returned for a record kind without a table.
var ErrUnknownKind = errors.New("no table for record kind")

// CragDB is the SQLite store for crawled records and crawl history.
type CragDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CragDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CragDB inside dbDir.
func Open(dbDir string, opts Options) (*CragDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CragDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CragDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CragDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CragDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS areas (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		comment TEXT,
		longitude REAL,
		latitude REAL,
		url TEXT NOT NULL,
		child_type TEXT,
		child_ids TEXT,
		parent_name TEXT,
		parent_id TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_areas_parent ON areas(parent_id);

	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		grade TEXT,
		type TEXT,
		length TEXT,
		pitch INTEGER,
		commitment_grade TEXT,
		protection TEXT,
		user_rating TEXT,
		description TEXT,
		comment TEXT,
		url TEXT NOT NULL,
		parent_name TEXT,
		parent_id TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_routes_parent ON routes(parent_id);

	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_url TEXT NOT NULL,
		started DATETIME NOT NULL,
		finished DATETIME NOT NULL,
		areas INTEGER DEFAULT 0,
		routes INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		anomalies INTEGER DEFAULT 0,
		duplicates INTEGER DEFAULT 0,
		truncated INTEGER DEFAULT 0,
		aborted TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root ON crawl_runs(root_url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// tableFor returns the table holding records of kind.
func tableFor(kind model.Kind) (string, error) {
	switch kind {
	case model.KindArea:
		return "areas", nil
	case model.KindRoute:
		return "routes", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// UpsertRecord inserts a record or replaces the row with the same id.
// Columns come from the record, so the statement follows the model.
func (cdb *CragDB) UpsertRecord(ctx context.Context, rec model.Record) error {
	table, err := tableFor(rec.Kind())
	if err != nil {
		return err
	}
	cols := rec.Columns()
	vals := rec.Values()
	if len(cols) != len(vals) {
		return fmt.Errorf("record %s has %d columns and %d values", rec.RecordID(), len(cols), len(vals))
	}

	updates := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "id" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(`
	INSERT INTO %s (%s)
	VALUES (%s)
	ON CONFLICT(id) DO UPDATE SET
		%s
	`, table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		strings.Join(updates, ",\n\t\t"),
	)

	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	if _, err := cdb.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", rec.Kind(), rec.RecordID(), err)
	}
	return nil
}

// CountRecords returns the number of stored records of kind.
func (cdb *CragDB) CountRecords(ctx context.Context, kind model.Kind) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Run is the stored summary of one crawl.
type Run struct {
	ID         int64
	RootURL    string
	Started    time.Time
	Finished   time.Time
	Areas      int
	Routes     int
	Failed     int
	Anomalies  int
	Duplicates int
	Truncated  int

	// Aborted holds the fatal error message, empty for a finished crawl.
	Aborted string
}

// InsertRun stores a crawl summary and returns its id.
func (cdb *CragDB) InsertRun(ctx context.Context, run *Run) (int64, error) {
	query := `
	INSERT INTO crawl_runs (root_url, started, finished, areas, routes, failed, anomalies, duplicates, truncated, aborted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		run.RootURL,
		run.Started.UTC().Format(time.RFC3339),
		run.Finished.UTC().Format(time.RFC3339),
		run.Areas,
		run.Routes,
		run.Failed,
		run.Anomalies,
		run.Duplicates,
		run.Truncated,
		run.Aborted,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}
	return result.LastInsertId()
}

// ListRuns returns crawl summaries, newest first. An empty rootURL lists
// every root. A non-positive limit returns all runs.
func (cdb *CragDB) ListRuns(ctx context.Context, rootURL string, limit int) ([]Run, error) {
	query := `
	SELECT id, root_url, started, finished, areas, routes, failed, anomalies, duplicates, truncated, COALESCE(aborted, '')
	FROM crawl_runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)
	if rootURL != "" {
		query += " AND root_url = ?"
		args = append(args, rootURL)
	}
	query += " ORDER BY started DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID,
			&run.RootURL,
			&started,
			&finished,
			&run.Areas,
			&run.Routes,
			&run.Failed,
			&run.Anomalies,
			&run.Duplicates,
			&run.Truncated,
			&run.Aborted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.Started = parseTimestamp(started)
		run.Finished = parseTimestamp(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate crawl runs: %w", err)
	}
	return runs, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns the zero time when
// none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
