package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/pipefit/internal/program"
)

// SaveProgram inserts p or replaces the stored workout with the same id.
func (s *Store) SaveProgram(p program.Program) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.inTx(func(tx *sql.Tx) error {
		return saveProgram(tx, p)
	})
}

// SavePrograms replaces every stored workout with ps. Nothing is written
// unless all of them are valid.
func (s *Store) SavePrograms(ps []program.Program) error {
	if err := validatePrograms(ps); err != nil {
		return err
	}
	return s.inTx(func(tx *sql.Tx) error {
		return replacePrograms(tx, ps)
	})
}

// Restore replaces the catalog, the workouts, or both in one transaction.
// Either both writes land or neither does.
func (s *Store) Restore(exs []program.Exercise, ps []program.Program, withExercises, withWorkouts bool) error {
	var err error
	if withExercises {
		if exs, err = prepareExercises(exs); err != nil {
			return err
		}
	}
	if withWorkouts {
		if err := validatePrograms(ps); err != nil {
			return err
		}
	}
	return s.inTx(func(tx *sql.Tx) error {
		if withWorkouts {
			if err := replacePrograms(tx, ps); err != nil {
				return err
			}
		}
		if withExercises {
			return s.replaceExercises(tx, exs)
		}
		return nil
	})
}

func validatePrograms(ps []program.Program) error {
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("workout %q: %w", p.Name, err)
		}
	}
	return nil
}

func replacePrograms(tx *sql.Tx, ps []program.Program) error {
	if _, err := tx.Exec(`DELETE FROM workouts`); err != nil {
		return fmt.Errorf("clear workouts: %w", err)
	}
	for _, p := range ps {
		if err := saveProgram(tx, p); err != nil {
			return err
		}
	}
	return nil
}

func saveProgram(tx *sql.Tx, p program.Program) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := tx.Exec(
		`INSERT INTO workouts (id, name, is_cyclic, cycle_count, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, is_cyclic = excluded.is_cyclic,
		   cycle_count = excluded.cycle_count, created_at = excluded.created_at`,
		p.ID, p.Name, boolToInt(p.IsCyclic), p.CycleCount, created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save workout %q: %w", p.Name, err)
	}
	if _, err := tx.Exec(`DELETE FROM workout_steps WHERE workout_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear steps of %q: %w", p.Name, err)
	}
	for i, st := range p.Steps {
		_, err := tx.Exec(
			`INSERT INTO workout_steps (workout_id, position, exercise_id, name, duration, repetition_index, repetition_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, i, st.Exercise.ID, st.Exercise.Name, st.Exercise.Duration, st.RepetitionIndex, st.RepetitionCount,
		)
		if err != nil {
			return fmt.Errorf("save step %d of %q: %w", i, p.Name, err)
		}
	}
	return nil
}

func (s *Store) GetProgram(id string) (*program.Program, error) {
	p := &program.Program{}
	var cyclic int
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, is_cyclic, cycle_count, created_at FROM workouts WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &cyclic, &p.CycleCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get workout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workout %s: %w", id, err)
	}
	p.IsCyclic = cyclic == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if p.Steps, err = s.loadSteps(p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPrograms returns every saved workout, oldest first.
func (s *Store) ListPrograms() ([]program.Program, error) {
	rows, err := s.db.Query(
		`SELECT id, name, is_cyclic, cycle_count, created_at FROM workouts ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	var out []program.Program
	for rows.Next() {
		var p program.Program
		var cyclic int
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &cyclic, &p.CycleCount, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		p.IsCyclic = cyclic == 1
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// The single connection is free again once rows is closed.
	for i := range out {
		if out[i].Steps, err = s.loadSteps(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadSteps(workoutID string) ([]program.Step, error) {
	rows, err := s.db.Query(
		`SELECT exercise_id, name, duration, repetition_index, repetition_count
		 FROM workout_steps WHERE workout_id = ? ORDER BY position`, workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("load steps of %s: %w", workoutID, err)
	}
	defer rows.Close()

	var steps []program.Step
	for rows.Next() {
		var st program.Step
		if err := rows.Scan(&st.Exercise.ID, &st.Exercise.Name, &st.Exercise.Duration, &st.RepetitionIndex, &st.RepetitionCount); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func (s *Store) DeleteProgram(id string) error {
	res, err := s.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workout %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete workout %s: %w", id, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
