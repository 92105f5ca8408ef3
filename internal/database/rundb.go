package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// RunDB provides SQLite-based storage for download run history. It manages
// connection pooling and provides methods for saving, querying, and
// deleting runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory. If
// CreateIfNotExists is true, the directory and database file are created;
// otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "imgurgrab.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one record per completed download run, including the
	-- full report as JSON for lossless retrieval.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		tag TEXT NOT NULL,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		total_bytes INTEGER NOT NULL DEFAULT 0,
		output_root TEXT NOT NULL,
		report_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_tag ON runs(tag);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Run items store one record per image so history can be inspected
	-- with plain SQL without parsing report JSON.
	CREATE TABLE IF NOT EXISTS run_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		remote_url TEXT NOT NULL,
		path TEXT,
		bytes INTEGER NOT NULL DEFAULT 0,
		digest TEXT,
		failure TEXT,
		error TEXT,
		UNIQUE(run_id, ordinal)
	);

	CREATE INDEX IF NOT EXISTS idx_items_run ON run_items(run_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)

	return err
}

// SaveRun stores a completed run and its items. The run and item rows are
// written in one transaction so history never holds a partial run.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.DownloadReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	runQuery := `
	INSERT INTO runs (run_id, tag, mode, started_at, succeeded, failed, total_bytes, output_root, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := tx.ExecContext(ctx, runQuery,
		report.RunID,
		report.Tag,
		report.Mode,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Succeeded,
		report.Failed,
		report.TotalBytes,
		report.OutputRoot,
		string(reportJSON),
	); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	itemQuery := `
	INSERT INTO run_items (run_id, ordinal, remote_url, path, bytes, digest, failure, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, item := range report.Items {
		if _, err := tx.ExecContext(ctx, itemQuery,
			report.RunID,
			item.Descriptor.Ordinal,
			item.Descriptor.RemoteURL,
			item.Path,
			item.Bytes,
			item.Digest,
			item.Failure,
			item.Error,
		); err != nil {
			return fmt.Errorf("failed to save run item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves the full report for a run by its run ID.
// Returns nil without error when the run does not exist.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.DownloadReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE run_id = ?
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, runID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.DownloadReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}

	return &report, nil
}

// GetLatestRun retrieves the most recent run for a tag.
// Returns nil without error when the tag has no runs.
func (rdb *RunDB) GetLatestRun(ctx context.Context, tag string) (*model.DownloadReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE tag = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, tag).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var report model.DownloadReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}

	return &report, nil
}

// RunMetadata contains summary information about a stored run. This is
// used for listing history without loading full reports.
type RunMetadata struct {
	// ID is the unique identifier of the run row in the database.
	ID int64

	// RunID is the run's UUID.
	RunID string

	// Tag is the gallery tag the run downloaded.
	Tag string

	// Mode is the execution mode the run used.
	Mode string

	// StartedAt is when the run started.
	StartedAt time.Time

	// Succeeded is the number of images downloaded.
	Succeeded int

	// Failed is the number of images that failed.
	Failed int

	// TotalBytes is the number of bytes written.
	TotalBytes int64

	// OutputRoot is the run's output directory.
	OutputRoot string
}

// ListRuns retrieves run metadata, newest first. When tag is non-empty,
// only runs for that tag are returned. A positive limit caps the number of
// rows; zero means no cap.
func (rdb *RunDB) ListRuns(ctx context.Context, tag string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, run_id, tag, mode, started_at, succeeded, failed, total_bytes, output_root
	FROM runs
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if tag != "" {
		query += " AND tag = ?"
		args = append(args, tag)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string

		if err := rows.Scan(
			&meta.ID,
			&meta.RunID,
			&meta.Tag,
			&meta.Mode,
			&startedAt,
			&meta.Succeeded,
			&meta.Failed,
			&meta.TotalBytes,
			&meta.OutputRoot,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// RunItemRecord represents one stored download item.
type RunItemRecord struct {
	// ID is the unique identifier of the item row in the database.
	ID int64

	// RunID is the owning run's UUID.
	RunID string

	// Ordinal is the item's position in the tag listing.
	Ordinal int

	// RemoteURL is the image URL.
	RemoteURL string

	// Path is the local path the image was written to.
	Path string

	// Bytes is the number of bytes written.
	Bytes int64

	// Digest is the SHA3-256 digest of the image bytes.
	Digest string

	// Failure is the failure stage, empty on success.
	Failure string

	// Error is the failure message, empty on success.
	Error string
}

// Succeeded reports whether the item downloaded without error.
func (r RunItemRecord) Succeeded() bool {
	return r.Error == ""
}

// GetRunItems retrieves the stored items of a run in listing order.
func (rdb *RunDB) GetRunItems(ctx context.Context, runID string) ([]RunItemRecord, error) {
	query := `
	SELECT id, run_id, ordinal, remote_url, path, bytes, digest, failure, error
	FROM run_items
	WHERE run_id = ?
	ORDER BY ordinal ASC
	`

	rows, err := rdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run items: %w", err)
	}
	defer rows.Close()

	var results []RunItemRecord
	for rows.Next() {
		var item RunItemRecord
		var path, digest, failure, errMsg sql.NullString

		if err := rows.Scan(
			&item.ID,
			&item.RunID,
			&item.Ordinal,
			&item.RemoteURL,
			&path,
			&item.Bytes,
			&digest,
			&failure,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}

		item.Path = path.String
		item.Digest = digest.String
		item.Failure = failure.String
		item.Error = errMsg.String
		results = append(results, item)
	}

	return results, rows.Err()
}

// DeleteRun removes a run and its items.
// Returns the number of run rows deleted (0 or 1).
func (rdb *RunDB) DeleteRun(ctx context.Context, runID string) (int64, error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_items WHERE run_id = ?", runID); err != nil {
		return 0, fmt.Errorf("failed to delete run items: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete run: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	return deleted, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
