package engine

import "github.com/sadopc/pipefit/internal/program"

// Snapshot is a read-only copy of the engine state for rendering.
type Snapshot struct {
	State       State
	ProgramID   string
	ProgramName string
	IsCyclic    bool

	Step      program.Step
	StepIndex int
	StepCount int
	Cycle     int
	Cycles    int

	StepRemaining    int
	ProgramRemaining int
	TotalDuration    int

	RestRemaining int
	RestDuration  int

	// Done counts finished step occurrences out of Occurrences.
	Done        int
	Occurrences int
}

// Position is one step occurrence in the run.
type Position struct {
	Step      program.Step
	StepIndex int
	Cycle     int
}

// Snapshot returns the current state. The zero Snapshot (State Idle, no
// program) is returned when nothing is loaded.
func (e *Engine) Snapshot() Snapshot {
	if e.prog == nil {
		return Snapshot{State: StateIdle}
	}
	s := Snapshot{
		State:            e.state,
		ProgramID:        e.prog.ID,
		ProgramName:      e.prog.Name,
		IsCyclic:         e.prog.IsCyclic,
		Step:             e.prog.Steps[e.stepIndex],
		StepIndex:        e.stepIndex,
		StepCount:        len(e.prog.Steps),
		Cycle:            e.cycle,
		Cycles:           e.prog.CycleCount,
		StepRemaining:    e.stepRemaining,
		ProgramRemaining: e.programRemaining,
		TotalDuration:    e.prog.TotalDuration(),
		Occurrences:      e.prog.TotalOccurrences(),
	}
	if e.state == StateResting {
		s.RestRemaining = e.rest.Remaining()
		s.RestDuration = e.rest.Duration()
	}
	s.Done = (e.cycle-1)*len(e.prog.Steps) + e.stepIndex
	switch e.state {
	case StateCompleted:
		s.Done = s.Occurrences
	case StateResting:
		// the step before the rest is finished
		s.Done++
	}
	return s
}

// Progress returns the finished fraction of step occurrences, 0..1.
func (s Snapshot) Progress() float64 {
	if s.Occurrences == 0 {
		return 0
	}
	return float64(s.Done) / float64(s.Occurrences)
}

// Upcoming lists up to n step occurrences after the current one, following
// the run across cycle boundaries. While resting, the first entry is the
// step the rest leads into.
func (e *Engine) Upcoming(n int) []Position {
	if e.prog == nil || e.state == StateCompleted {
		return nil
	}
	var out []Position
	for i := 1; len(out) < n; i++ {
		p, ok := e.peek(i)
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

// peek returns the occurrence offset positions after the current one.
func (e *Engine) peek(offset int) (Position, bool) {
	count := len(e.prog.Steps)
	abs := (e.cycle-1)*count + e.stepIndex + offset
	if abs >= count*e.prog.CycleCount {
		return Position{}, false
	}
	idx := abs % count
	return Position{
		Step:      e.prog.Steps[idx],
		StepIndex: idx,
		Cycle:     abs/count + 1,
	}, true
}
