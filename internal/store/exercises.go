package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sadopc/pipefit/internal/program"
)

// CreateExercise validates and stores a new catalog exercise.
func (s *Store) CreateExercise(name string, duration int) (*program.Exercise, error) {
	ex, err := program.NewExercise(name, duration)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`INSERT INTO exercises (id, name, duration, created_at) VALUES (?, ?, ?, ?)`,
		ex.ID, ex.Name, ex.Duration, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	return &ex, nil
}

func (s *Store) GetExercise(id string) (*program.Exercise, error) {
	ex := &program.Exercise{}
	err := s.db.QueryRow(
		`SELECT id, name, duration FROM exercises WHERE id = ?`, id,
	).Scan(&ex.ID, &ex.Name, &ex.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get exercise %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise %s: %w", id, err)
	}
	return ex, nil
}

// ListExercises returns the catalog in insertion order.
func (s *Store) ListExercises() ([]program.Exercise, error) {
	rows, err := s.db.Query(`SELECT id, name, duration FROM exercises ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var out []program.Exercise
	for rows.Next() {
		var ex program.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Duration); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// DeleteExercise removes an exercise from the catalog. Saved workouts keep
// their own copies and are not affected.
func (s *Store) DeleteExercise(id string) error {
	res, err := s.db.Exec(`DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete exercise %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete exercise %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceExercises swaps the whole catalog for exs, keeping their order.
// Exercises without an id get a fresh one.
func (s *Store) ReplaceExercises(exs []program.Exercise) error {
	exs, err := prepareExercises(exs)
	if err != nil {
		return err
	}
	return s.inTx(func(tx *sql.Tx) error {
		return s.replaceExercises(tx, exs)
	})
}

// prepareExercises validates exs and returns a copy with every id set.
func prepareExercises(exs []program.Exercise) ([]program.Exercise, error) {
	exs = append([]program.Exercise(nil), exs...)
	for i, ex := range exs {
		valid, err := program.NewExercise(ex.Name, ex.Duration)
		if err != nil {
			return nil, err
		}
		if ex.ID == "" {
			exs[i].ID = valid.ID
		}
	}
	return exs, nil
}

func (s *Store) replaceExercises(tx *sql.Tx, exs []program.Exercise) error {
	if _, err := tx.Exec(`DELETE FROM exercises`); err != nil {
		return fmt.Errorf("clear exercises: %w", err)
	}
	now := s.timestamp()
	for _, ex := range exs {
		if _, err := tx.Exec(
			`INSERT INTO exercises (id, name, duration, created_at) VALUES (?, ?, ?, ?)`,
			ex.ID, ex.Name, ex.Duration, now,
		); err != nil {
			return fmt.Errorf("insert exercise %q: %w", ex.Name, err)
		}
	}
	return nil
}
