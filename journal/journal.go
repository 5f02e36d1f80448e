package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Asterixfoods/asterix-charts/journal/contracts"
	"github.com/Asterixfoods/asterix-charts/journal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    folder      TEXT NOT NULL,
    input_file  TEXT NOT NULL,
    checksum    TEXT NOT NULL,
    status      TEXT NOT NULL CHECK (status IN ('completed', 'failed', 'rolled_back')),
    error_kind  TEXT NOT NULL DEFAULT '',
    chart_count INTEGER NOT NULL DEFAULT 0,
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// RunJournal is a sqlite-backed journal of provisioning runs. The database
// file is created on first use, not on construction, so a run that fails
// validation leaves no trace on disk.
type RunJournal struct {
	path    string
	once    sync.Once
	db      *sql.DB
	initErr error
}

// NewRunJournal prepares a journal at path. ":memory:" works for tests.
func NewRunJournal(path string) contracts.IRunJournal {
	return &RunJournal{path: path}
}

func (j *RunJournal) ensure() error {
	j.once.Do(func() {
		if j.path != ":memory:" {
			if dir := filepath.Dir(j.path); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					j.initErr = fmt.Errorf("creating journal directory: %w", err)
					return
				}
			}
		}

		db, err := sql.Open("sqlite", j.path)
		if err != nil {
			j.initErr = fmt.Errorf("opening journal: %w", err)
			return
		}
		// Single connection: this CLI never journals concurrently, and it
		// keeps sqlite away from SQLITE_BUSY.
		db.SetMaxOpenConns(1)

		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			j.initErr = fmt.Errorf("migrating journal schema: %w", err)
			return
		}
		j.db = db
	})
	return j.initErr
}

// Record appends one run to the journal.
func (j *RunJournal) Record(ctx context.Context, record models.RunRecord) error {
	if err := j.ensure(); err != nil {
		return err
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, folder, input_file, checksum, status, error_kind, chart_count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Folder, record.InputFile, record.Checksum, record.Status,
		record.ErrorKind, record.ChartCount, record.StartedAt.UTC(), record.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", record.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (j *RunJournal) List(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if err := j.ensure(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, folder, input_file, checksum, status, error_kind, chart_count, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		if err := rows.Scan(&r.ID, &r.Folder, &r.InputFile, &r.Checksum, &r.Status,
			&r.ErrorKind, &r.ChartCount, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of recorded runs.
func (j *RunJournal) Count(ctx context.Context) (int, error) {
	if err := j.ensure(); err != nil {
		return 0, err
	}
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// Clear removes all recorded runs.
func (j *RunJournal) Clear(ctx context.Context) error {
	if err := j.ensure(); err != nil {
		return err
	}
	if _, err := j.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("clearing runs: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (j *RunJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
