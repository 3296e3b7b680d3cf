package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run represents a row in the runs table.
type Run struct {
	ID         int64
	RepoURL    string
	Model      string
	Status     string
	Rounds     int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunEvent represents a row in the run_events table.
type RunEvent struct {
	ID        int64
	RunID     int64
	Event     string
	Detail    string
	Timestamp time.Time
}

// StartRun records the start of a generation run and returns its id.
func (d *DB) StartRun(repoURL, model string) (int64, error) {
	var id int64
	err := d.conn.QueryRow(
		`INSERT INTO runs (repo_url, model) VALUES ($1, $2) RETURNING id`,
		repoURL, model,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// LogEvent appends an event to a run.
func (d *DB) LogEvent(runID int64, event, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO run_events (run_id, event, detail) VALUES ($1, $2, $3)`,
		runID, event, detail,
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// FinishRun records the final status and round count of a run.
func (d *DB) FinishRun(runID int64, status string, rounds int) error {
	_, err := d.conn.Exec(
		`UPDATE runs SET status = $1, rounds = $2, finished_at = now() WHERE id = $3`,
		status, rounds, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		`SELECT id, repo_url, model, status, rounds, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.RepoURL, &r.Model, &r.Status, &r.Rounds, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunEvents returns the events of one run in order.
func (d *DB) RunEvents(runID int64) ([]RunEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, event, detail, timestamp
		 FROM run_events WHERE run_id = $1 ORDER BY timestamp, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("run events: %w", err)
	}
	defer rows.Close()

	var events []RunEvent
	for rows.Next() {
		var e RunEvent
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Detail = detail.String
		events = append(events, e)
	}
	return events, rows.Err()
}
