package engine

import "github.com/sadopc/pipefit/internal/program"

// EventKind identifies a playback lifecycle event.
type EventKind int

const (
	WorkoutStarted EventKind = iota
	WorkoutPaused
	WorkoutCompleted
	ExerciseCompleted
	ExerciseUpcoming
)

var eventNames = map[EventKind]string{
	WorkoutStarted:    "workout_started",
	WorkoutPaused:     "workout_paused",
	WorkoutCompleted:  "workout_completed",
	ExerciseCompleted: "exercise_completed",
	ExerciseUpcoming:  "exercise_upcoming",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is what the engine hands to its Notifier. Step, StepIndex and Cycle
// describe the exercise the event is about and are zero for workout-level
// events.
type Event struct {
	Kind      EventKind
	Program   string // program name
	Step      program.Step
	StepIndex int
	Cycle     int

	// Finished distinguishes a natural finish from a user stop on
	// WorkoutCompleted.
	Finished bool
}

// Notifier receives engine events. Implementations must not call back into
// the engine; nothing they do can change playback state.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
