// Package sqlite keeps an append-only history of terminal job runs, so past
// outcomes survive process restarts. Live job state never lives here; the
// registry owns it.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

type History struct {
	db *sql.DB
}

func NewHistory(dataDir string) (*History, error) {
	dbPath := filepath.Join(dataDir, "reelpilot.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection: WAL allows concurrent reads but only one writer.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", p, err)
		}
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// RecordRun appends a terminal job record.
func (h *History) RecordRun(rec *domain.JobRecord) error {
	if !rec.Terminal() {
		return fmt.Errorf("refusing to record non-terminal job %s/%s", rec.Folder, rec.Kind)
	}
	_, err := h.db.Exec(`
		INSERT INTO job_runs (run_id, folder, kind, state, result, errors, output_paths, completed, total, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Folder,
		string(rec.Kind),
		string(rec.State),
		rec.Result,
		strings.Join(rec.Errors, "\n"),
		strings.Join(rec.OutputPaths, "\n"),
		rec.Completed,
		rec.Total,
		rec.StartedAt,
		rec.FinishedAt,
	)
	return err
}

// ListRecent returns the newest terminal runs first.
func (h *History) ListRecent(limit int) ([]*domain.JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(`
		SELECT run_id, folder, kind, state, result, errors, output_paths, completed, total, started_at, finished_at
		FROM job_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.JobRecord
	for rows.Next() {
		var rec domain.JobRecord
		var kind, state, errs, outputs string
		if err := rows.Scan(&rec.RunID, &rec.Folder, &kind, &state, &rec.Result, &errs, &outputs,
			&rec.Completed, &rec.Total, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.Kind = domain.JobKind(kind)
		rec.State = domain.JobState(state)
		if errs != "" {
			rec.Errors = strings.Split(errs, "\n")
		}
		if outputs != "" {
			rec.OutputPaths = strings.Split(outputs, "\n")
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

var _ port.JobHistory = (*History)(nil)
