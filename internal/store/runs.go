package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StartRun records that a workout began playing.
func (s *Store) StartRun(workoutID, workoutName string) (*Run, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (workout_id, workout_name, status, started_at) VALUES (?, ?, ?, ?)`,
		workoutID, workoutName, RunRunning, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetRun(id)
}

// FinishRun closes a run with its final status and the seconds of exercise
// actually performed.
func (s *Store) FinishRun(id int64, status RunStatus, workSeconds int64) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, work_seconds = ?, ended_at = ? WHERE id = ?`,
		status, workSeconds, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, workout_id, workout_name, status, work_seconds, started_at, ended_at
		 FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. A limit of 0 returns all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `SELECT id, workout_id, workout_name, status, work_seconds, started_at, ended_at
		FROM runs ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	r := &Run{}
	var status, startedAt string
	var endedAt sql.NullString
	if err := sc.Scan(&r.ID, &r.WorkoutID, &r.WorkoutName, &status, &r.WorkSeconds, &startedAt, &endedAt); err != nil {
		return nil, err
	}
	r.Status = RunStatus(status)
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339, endedAt.String)
		r.EndedAt = &t
	}
	return r, nil
}

// GetDailyTraining sums finished work time per day in [from, to).
func (s *Store) GetDailyTraining(from, to time.Time) ([]DailyTraining, error) {
	rows, err := s.db.Query(`
		SELECT date(started_at) AS day, COALESCE(SUM(work_seconds), 0), COUNT(*)
		FROM runs
		WHERE ended_at IS NOT NULL
		  AND started_at >= ? AND started_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily training: %w", err)
	}
	defer rows.Close()

	var days []DailyTraining
	for rows.Next() {
		var d DailyTraining
		if err := rows.Scan(&d.Date, &d.TotalSeconds, &d.RunCount); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *Store) GetRunStats(from, to time.Time) (RunStats, error) {
	var st RunStats
	err := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'stopped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(work_seconds), 0)
		FROM runs
		WHERE ended_at IS NOT NULL
		  AND started_at >= ? AND started_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&st.Completed, &st.Stopped, &st.TotalSeconds)
	if err != nil {
		return RunStats{}, fmt.Errorf("run stats: %w", err)
	}
	return st, nil
}
