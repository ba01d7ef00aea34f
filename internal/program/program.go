// Package program builds and validates workout programs from an exercise
// catalog. Everything here is pure: no I/O, no clocks.
package program

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exercise is a catalog entry. Programs hold copies of exercises, so later
// catalog edits never reach a saved program.
type Exercise struct {
	ID       string
	Name     string
	Duration int // seconds
}

// Step is one timed occurrence of an exercise inside a program.
type Step struct {
	Exercise        Exercise
	RepetitionIndex int // 1-based position within its repetition run
	RepetitionCount int
}

// Duration returns the step length in seconds.
func (s Step) Duration() int { return s.Exercise.Duration }

// Repeated reports whether the step belongs to a run of more than one repetition.
func (s Step) Repeated() bool { return s.RepetitionCount > 1 }

type Program struct {
	ID         string
	Name       string
	Steps      []Step
	CycleCount int
	IsCyclic   bool
	CreatedAt  time.Time
}

// Selection is one builder row: a catalog exercise and how many times in a
// row it should run.
type Selection struct {
	ExerciseID      string
	RepetitionCount int
}

// NewExercise validates the input and returns an exercise with a fresh id.
func NewExercise(name string, duration int) (Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Exercise{}, newError(EmptyName, "name", "exercise name is required")
	}
	if duration <= 0 {
		return Exercise{}, newError(InvalidDuration, "duration", "duration must be positive")
	}
	return Exercise{ID: uuid.NewString(), Name: name, Duration: duration}, nil
}

// Build expands selections into a program. Each selection with repetition
// count k becomes k consecutive steps carrying snapshot copies of the catalog
// exercise. The cycle count is forced to 1 for non-cyclic programs.
func Build(name string, selections []Selection, isCyclic bool, cycleCount int, catalog []Exercise) (Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Program{}, newError(EmptyName, "name", "workout name is required")
	}
	if len(selections) == 0 {
		return Program{}, newError(EmptySelection, "selections", "add at least one exercise")
	}
	if !isCyclic {
		cycleCount = 1
	} else if cycleCount < 1 {
		return Program{}, newError(InvalidCycleCount, "cycleCount", "cycle count must be at least 1")
	}

	byID := make(map[string]Exercise, len(catalog))
	for _, ex := range catalog {
		byID[ex.ID] = ex
	}

	var steps []Step
	for _, sel := range selections {
		ex, ok := byID[sel.ExerciseID]
		if !ok {
			return Program{}, newError(UnknownExercise, "selections", "unknown exercise "+sel.ExerciseID)
		}
		if sel.RepetitionCount < 1 {
			return Program{}, newError(InvalidRepetition, "selections", "repetition count must be at least 1 for "+ex.Name)
		}
		for i := 1; i <= sel.RepetitionCount; i++ {
			steps = append(steps, Step{
				Exercise:        ex,
				RepetitionIndex: i,
				RepetitionCount: sel.RepetitionCount,
			})
		}
	}

	p := Program{
		ID:         uuid.NewString(),
		Name:       name,
		Steps:      steps,
		CycleCount: cycleCount,
		IsCyclic:   isCyclic,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

// Validate checks a program that did not come from Build, e.g. one read from
// storage or an import file.
func (p Program) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return newError(EmptyName, "name", "workout name is required")
	}
	if len(p.Steps) == 0 {
		return newError(EmptySelection, "steps", "workout has no exercises")
	}
	if p.CycleCount < 1 {
		return newError(InvalidCycleCount, "cycleCount", "cycle count must be at least 1")
	}
	if !p.IsCyclic && p.CycleCount != 1 {
		return newError(InvalidCycleCount, "cycleCount", "non-cyclic workout must have exactly one cycle")
	}
	for _, s := range p.Steps {
		if s.Duration() <= 0 {
			return newError(InvalidDuration, "steps", "exercise "+s.Exercise.Name+" has no duration")
		}
		if s.RepetitionCount < 1 || s.RepetitionIndex < 1 || s.RepetitionIndex > s.RepetitionCount {
			return newError(InvalidRepetition, "steps", "bad repetition metadata for "+s.Exercise.Name)
		}
	}
	return nil
}

// CycleDuration is the length of one pass over all steps, in seconds.
func (p Program) CycleDuration() int {
	total := 0
	for _, s := range p.Steps {
		total += s.Duration()
	}
	return total
}

// TotalDuration is the full runtime in seconds, all cycles included.
func (p Program) TotalDuration() int {
	return p.CycleDuration() * p.CycleCount
}

// TotalOccurrences is the number of step occurrences over all cycles.
func (p Program) TotalOccurrences() int {
	return len(p.Steps) * p.CycleCount
}

// IsLastStep reports whether the given position is the final occurrence of
// the whole run.
func (p Program) IsLastStep(stepIndex, cycle int) bool {
	return stepIndex == len(p.Steps)-1 && cycle == p.CycleCount
}

// Clone returns a deep copy that shares no slices with p.
func (p Program) Clone() Program {
	c := p
	c.Steps = make([]Step, len(p.Steps))
	copy(c.Steps, p.Steps)
	return c
}
