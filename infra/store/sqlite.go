// Package store persists shadow run summaries so past runs can be listed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	coremetrics "github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/core/shadow"
)

// Config holds the sqlite sink settings.
type Config struct {
	Path string `json:"path"`
}

// RunRecord is one persisted row: the summary of a run for one tilt.
type RunRecord struct {
	RunID      string
	Site       string
	Start      time.Time
	End        time.Time
	Step       time.Duration
	Summary    shadow.Summary
	ComputedAt time.Time
	Duration   time.Duration
}

// SQLiteStore persists shadow run records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ coremetrics.MetricsSink = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS shadow_runs (
        run_id TEXT NOT NULL,
        tilt REAL NOT NULL,
        site TEXT NOT NULL,
        start_ts INTEGER NOT NULL,
        end_ts INTEGER NOT NULL,
        step_ns INTEGER NOT NULL,
        samples INTEGER NOT NULL,
        sun_up INTEGER NOT NULL,
        mean_area REAL NOT NULL,
        peak_area REAL NOT NULL,
        computed_at INTEGER NOT NULL,
        duration_ns INTEGER NOT NULL,
        PRIMARY KEY(run_id, tilt)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// RecordShadowRun inserts or replaces the summary of the run for its tilt.
func (s *SQLiteStore) RecordShadowRun(ctx context.Context, ev coremetrics.ShadowRunEvent) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO shadow_runs
        (run_id, tilt, site, start_ts, end_ts, step_ns, samples, sun_up, mean_area, peak_area, computed_at, duration_ns)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id, tilt) DO UPDATE SET
            site = excluded.site,
            start_ts = excluded.start_ts,
            end_ts = excluded.end_ts,
            step_ns = excluded.step_ns,
            samples = excluded.samples,
            sun_up = excluded.sun_up,
            mean_area = excluded.mean_area,
            peak_area = excluded.peak_area,
            computed_at = excluded.computed_at,
            duration_ns = excluded.duration_ns`,
		ev.RunID, ev.Summary.Tilt, ev.Site, ev.Start.UnixNano(), ev.End.UnixNano(), int64(ev.Step),
		ev.Summary.Samples, ev.Summary.SunUp, ev.Summary.Mean, ev.Summary.Peak,
		ev.ComputedAt.UnixNano(), int64(ev.Duration))
	if err != nil {
		return fmt.Errorf("store run %s: %w", ev.RunID, err)
	}
	return nil
}

// List returns the stored records of the latest limit runs, newest run first
// and tilts ascending within a run. A limit <= 0 returns every run.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT r.run_id, r.tilt, r.site, r.start_ts, r.end_ts, r.step_ns,
        r.samples, r.sun_up, r.mean_area, r.peak_area, r.computed_at, r.duration_ns
        FROM shadow_runs r
        JOIN (SELECT run_id, MAX(computed_at) AS run_at FROM shadow_runs
              GROUP BY run_id ORDER BY run_at DESC, run_id LIMIT ?) g ON g.run_id = r.run_id
        ORDER BY g.run_at DESC, r.run_id, r.tilt`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunRecord
	for rows.Next() {
		var (
			r                             RunRecord
			start, end, step, at, elapsed int64
		)
		if err := rows.Scan(&r.RunID, &r.Summary.Tilt, &r.Site, &start, &end, &step, &r.Summary.Samples,
			&r.Summary.SunUp, &r.Summary.Mean, &r.Summary.Peak, &at, &elapsed); err != nil {
			return nil, err
		}
		r.Start = time.Unix(0, start).UTC()
		r.End = time.Unix(0, end).UTC()
		r.Step = time.Duration(step)
		r.ComputedAt = time.Unix(0, at).UTC()
		r.Duration = time.Duration(elapsed)
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
