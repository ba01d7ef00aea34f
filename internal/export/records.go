package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/pipefit/internal/program"
)

// ID is an identifier that older files wrote as a JSON number and newer
// ones write as a string. It always marshals as a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

// ExerciseRecord is one entry of an exercises file.
type ExerciseRecord struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// StepRecord is one flattened step inside a workout record. OriginalCycles
// and CurrentCycle are the repetition count and 1-based repetition index.
type StepRecord struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Duration       int    `json:"duration"`
	OriginalCycles int    `json:"originalCycles"`
	CurrentCycle   int    `json:"currentCycle"`
}

// WorkoutRecord is one entry of a workouts file.
type WorkoutRecord struct {
	ID          ID           `json:"id"`
	Name        string       `json:"name"`
	Exercises   []StepRecord `json:"exercises"`
	IsCircular  bool         `json:"isCircular"`
	TotalCycles int          `json:"totalCycles"`
	CreatedAt   string       `json:"createdAt"`
}

// BackupRecord is the full-backup file.
type BackupRecord struct {
	Version    string            `json:"version"`
	ExportDate string            `json:"exportDate"`
	Exercises  []json.RawMessage `json:"exercises"`
	Workouts   []json.RawMessage `json:"workouts"`
}

const backupVersion = "1.0"

func exerciseRecord(ex program.Exercise) ExerciseRecord {
	return ExerciseRecord{ID: ID(ex.ID), Name: ex.Name, Duration: ex.Duration}
}

func (r ExerciseRecord) exercise() (program.Exercise, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" || r.Duration <= 0 {
		return program.Exercise{}, false
	}
	return program.Exercise{ID: string(r.ID), Name: name, Duration: r.Duration}, true
}

func workoutRecord(p program.Program) WorkoutRecord {
	r := WorkoutRecord{
		ID:          ID(p.ID),
		Name:        p.Name,
		IsCircular:  p.IsCyclic,
		TotalCycles: p.CycleCount,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		Exercises:   make([]StepRecord, 0, len(p.Steps)),
	}
	for _, st := range p.Steps {
		r.Exercises = append(r.Exercises, StepRecord{
			ID:             ID(st.Exercise.ID),
			Name:           st.Exercise.Name,
			Duration:       st.Exercise.Duration,
			OriginalCycles: st.RepetitionCount,
			CurrentCycle:   st.RepetitionIndex,
		})
	}
	return r
}

// program converts the record, filling the defaults old files leave out.
// It reports false when the result is not a valid program.
func (r WorkoutRecord) program() (program.Program, bool) {
	p := program.Program{
		ID:         string(r.ID),
		Name:       strings.TrimSpace(r.Name),
		IsCyclic:   r.IsCircular,
		CycleCount: 1,
	}
	if r.IsCircular && r.TotalCycles > 1 {
		p.CycleCount = r.TotalCycles
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		p.CreatedAt = t.UTC()
	}
	for _, s := range r.Exercises {
		st := program.Step{
			Exercise:        program.Exercise{ID: string(s.ID), Name: s.Name, Duration: s.Duration},
			RepetitionCount: max(1, s.OriginalCycles),
			RepetitionIndex: max(1, s.CurrentCycle),
		}
		p.Steps = append(p.Steps, st)
	}
	if p.Validate() != nil {
		return program.Program{}, false
	}
	return p, true
}
