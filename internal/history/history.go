// Package history records sweeps and their matched directories in a SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/idelchi/nmsweep/internal/sweep"
)

// Actions recorded for a matched directory.
const (
	ActionDelete = "DELETE"
	ActionDryRun = "DRY_RUN"
	ActionFailed = "FAILED"
)

// DB manages the SQLite database holding the sweep history.
type DB struct {
	db *sql.DB
}

// Removal is one matched directory as recorded in the history.
type Removal struct {
	ID           int64     `json:"id"`
	SweepID      int64     `json:"sweep_id"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	FileCount    int64     `json:"file_count"`
	Action       string    `json:"action"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Totals aggregates the whole history.
type Totals struct {
	Sweeps      int64     `json:"sweeps"`
	Removed     int64     `json:"removed"`
	BytesFreed  int64     `json:"bytes_freed"`
	Failed      int64     `json:"failed"`
	LastSweepAt time.Time `json:"last_sweep_at"`
}

// Open opens or creates the history database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening history %q: %w", path, err)
	}

	// A sweep is a single writer; WAL keeps readers unblocked.
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()

			return nil, fmt.Errorf("initializing history %q (check permissions): %w", path, err)
		}
	}

	hdb := &DB{db: db}
	if err := hdb.initSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return hdb, nil
}

// dsn builds a SQLite URI for path. Characters such as '?' and '#' are escaped
// so they stay part of the file name; _loc=auto enables DATETIME parsing into time.Time.
func dsn(path string) string {
	return "file:" + (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath() + "?_loc=auto"
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweeps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		root TEXT NOT NULL,
		dry_run INTEGER NOT NULL,
		total_removed INTEGER NOT NULL DEFAULT 0,
		total_size INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sweep_id INTEGER NOT NULL REFERENCES sweeps(id),
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		file_count INTEGER NOT NULL,
		action TEXT NOT NULL,
		error_message TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_removals_sweep ON removals(sweep_id);
	CREATE INDEX IF NOT EXISTS idx_removals_created_at ON removals(created_at);
	`

	_, err := d.db.Exec(schema)

	return err
}

// Begin records the start of a sweep and returns its id.
func (d *DB) Begin(root string, dryRun bool, startedAt time.Time) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO sweeps (started_at, root, dry_run) VALUES (?, ?, ?)`,
		startedAt, root, dryRun,
	)
	if err != nil {
		return 0, fmt.Errorf("recording sweep start: %w", err)
	}

	return res.LastInsertId()
}

// Record inserts one matched directory of the sweep with the given id.
func (d *DB) Record(sweepID int64, match sweep.Match) error {
	_, err := d.db.Exec(`
	INSERT INTO removals (sweep_id, path, size, file_count, action, error_message, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sweepID, match.Path, match.Size, match.FileCount, Action(match), match.Error, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("recording %q: %w", match.Path, err)
	}

	return nil
}

// Finish stores the totals of the sweep with the given id.
func (d *DB) Finish(sweepID int64, result sweep.Result, finishedAt time.Time) error {
	_, err := d.db.Exec(`
	UPDATE sweeps SET finished_at = ?, total_removed = ?, total_size = ?, failed = ?
	WHERE id = ?`,
		finishedAt, result.TotalRemoved, result.TotalSize, result.Failed, sweepID,
	)
	if err != nil {
		return fmt.Errorf("recording sweep totals: %w", err)
	}

	return nil
}

// Discard removes the sweep with the given id and its recorded directories.
// It is used for sweeps that never got past listing their root.
func (d *DB) Discard(sweepID int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("discarding sweep: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	if _, err := tx.Exec(`DELETE FROM removals WHERE sweep_id = ?`, sweepID); err != nil {
		return fmt.Errorf("discarding sweep removals: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM sweeps WHERE id = ?`, sweepID); err != nil {
		return fmt.Errorf("discarding sweep: %w", err)
	}

	return tx.Commit()
}

// Recent returns the limit most recently recorded directories, newest first.
func (d *DB) Recent(limit int) ([]Removal, error) {
	rows, err := d.db.Query(`
	SELECT id, sweep_id, path, size, file_count, action, COALESCE(error_message, ''), created_at
	FROM removals
	ORDER BY id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying removals: %w", err)
	}
	defer rows.Close()

	var removals []Removal

	for rows.Next() {
		var r Removal
		if err := rows.Scan(&r.ID, &r.SweepID, &r.Path, &r.Size, &r.FileCount, &r.Action, &r.ErrorMessage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning removal: %w", err)
		}

		removals = append(removals, r)
	}

	return removals, rows.Err()
}

// Totals aggregates all finished, destructive sweeps.
func (d *DB) Totals() (Totals, error) {
	const where = `WHERE dry_run = 0 AND finished_at IS NOT NULL`

	var totals Totals

	err := d.db.QueryRow(`
	SELECT COUNT(*), COALESCE(SUM(total_removed), 0), COALESCE(SUM(total_size), 0), COALESCE(SUM(failed), 0)
	FROM sweeps ` + where,
	).Scan(&totals.Sweeps, &totals.Removed, &totals.BytesFreed, &totals.Failed)
	if err != nil {
		return Totals{}, fmt.Errorf("querying totals: %w", err)
	}

	err = d.db.QueryRow(`SELECT started_at FROM sweeps ` + where + ` ORDER BY id DESC LIMIT 1`).
		Scan(&totals.LastSweepAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Totals{}, fmt.Errorf("querying last sweep: %w", err)
	}

	return totals, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Action returns the history action describing match.
func Action(match sweep.Match) string {
	switch {
	case match.DryRun:
		return ActionDryRun
	case match.Deleted:
		return ActionDelete
	default:
		return ActionFailed
	}
}
