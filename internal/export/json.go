package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/pipefit/internal/program"
)

// ErrNothingToImport is returned when a file holds no valid item.
var ErrNothingToImport = errors.New("no valid items found in file")

func WriteExercises(exs []program.Exercise, path string) error {
	recs := make([]ExerciseRecord, 0, len(exs))
	for _, ex := range exs {
		recs = append(recs, exerciseRecord(ex))
	}
	return writeJSON(recs, path)
}

func WriteWorkouts(ps []program.Program, path string) error {
	recs := make([]WorkoutRecord, 0, len(ps))
	for _, p := range ps {
		recs = append(recs, workoutRecord(p))
	}
	return writeJSON(recs, path)
}

// WriteBackup writes both collections into one file.
func WriteBackup(exs []program.Exercise, ps []program.Program, at time.Time, path string) error {
	b := BackupRecord{
		Version:    backupVersion,
		ExportDate: at.UTC().Format(time.RFC3339),
		Exercises:  []json.RawMessage{},
		Workouts:   []json.RawMessage{},
	}
	for _, ex := range exs {
		raw, err := json.Marshal(exerciseRecord(ex))
		if err != nil {
			return fmt.Errorf("marshal exercise: %w", err)
		}
		b.Exercises = append(b.Exercises, raw)
	}
	for _, p := range ps {
		raw, err := json.Marshal(workoutRecord(p))
		if err != nil {
			return fmt.Errorf("marshal workout: %w", err)
		}
		b.Workouts = append(b.Workouts, raw)
	}
	return writeJSON(b, path)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// ReadExercises returns the valid exercises of an exercises file. Items that
// do not decode or fail validation are skipped.
func ReadExercises(path string) ([]program.Exercise, error) {
	items, err := readArray(path)
	if err != nil {
		return nil, err
	}
	exs := decodeExercises(items)
	if len(exs) == 0 {
		return nil, ErrNothingToImport
	}
	return exs, nil
}

// ReadWorkouts returns the valid workouts of a workouts file.
func ReadWorkouts(path string) ([]program.Program, error) {
	items, err := readArray(path)
	if err != nil {
		return nil, err
	}
	ps := decodeWorkouts(items)
	if len(ps) == 0 {
		return nil, ErrNothingToImport
	}
	return ps, nil
}

// Backup is a decoded backup file. A collection missing from the file is
// reported through its Has flag and must be left untouched on restore.
type Backup struct {
	Version      string
	ExportDate   time.Time
	Exercises    []program.Exercise
	Workouts     []program.Program
	HasExercises bool
	HasWorkouts  bool
}

func ReadBackup(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var rec BackupRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	b := &Backup{
		Version:      rec.Version,
		HasExercises: rec.Exercises != nil,
		HasWorkouts:  rec.Workouts != nil,
	}
	b.ExportDate, _ = time.Parse(time.RFC3339, rec.ExportDate)
	if !b.HasExercises && !b.HasWorkouts {
		return nil, ErrNothingToImport
	}
	b.Exercises = decodeExercises(rec.Exercises)
	for i := range b.Exercises {
		if b.Exercises[i].ID == "" {
			b.Exercises[i].ID = uuid.NewString()
		}
	}
	b.Workouts = decodeWorkouts(rec.Workouts)
	for i := range b.Workouts {
		if b.Workouts[i].ID == "" {
			b.Workouts[i].ID = uuid.NewString()
		}
	}
	return b, nil
}

func readArray(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("import file must contain a JSON array: %w", err)
	}
	return items, nil
}

func decodeExercises(items []json.RawMessage) []program.Exercise {
	var out []program.Exercise
	for _, raw := range items {
		var rec ExerciseRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if ex, ok := rec.exercise(); ok {
			out = append(out, ex)
		}
	}
	return out
}

func decodeWorkouts(items []json.RawMessage) []program.Program {
	var out []program.Program
	for _, raw := range items {
		var rec WorkoutRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if p, ok := rec.program(); ok {
			out = append(out, p)
		}
	}
	return out
}
