package store

import (
	"context"
)

// RunEntry is one row of the run log.
type RunEntry struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Strategy   string `json:"strategy"`
	Mode       string `json:"mode"`
	State      string `json:"state"`
	Rounds     int    `json:"rounds"`
	Admitted   int    `json:"admitted"`
	Returned   int    `json:"returned"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

// RecordRun appends a run log entry.
func (s *Store) RecordRun(ctx context.Context, e *RunEntry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO run_log (id, entity, strategy, mode, state, rounds,
		admitted, returned, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Entity, e.Strategy, e.Mode, e.State, e.Rounds,
		e.Admitted, e.Returned, e.StartedAt, e.FinishedAt)
	return err
}

// RecentRuns returns the latest run log entries, newest first.
// An empty entity matches all entities.
func (s *Store) RecentRuns(ctx context.Context, entity string, limit int) ([]*RunEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, entity, strategy, mode, state, rounds,
		admitted, returned, started_at, finished_at
		FROM run_log`
	args := []any{}
	if entity != "" {
		query += ` WHERE entity = ?`
		args = append(args, entity)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*RunEntry
	for rows.Next() {
		e := &RunEntry{}
		if err := rows.Scan(&e.ID, &e.Entity, &e.Strategy, &e.Mode, &e.State,
			&e.Rounds, &e.Admitted, &e.Returned, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
