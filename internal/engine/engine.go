// Package engine drives one workout program through a run: a state machine
// over the program's steps that advances on elapsed wall-clock seconds and
// optionally inserts a rest countdown between exercises.
//
// The engine is not safe for concurrent use. It is meant to be owned by a
// single event loop (the TUI update loop) that calls Poll on every tick.
package engine

import (
	"io"
	"log/slog"

	"github.com/sadopc/pipefit/internal/program"
)

// State is the engine's lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePaused
	StateRunning
	StateResting
	StateCompleted
)

var stateNames = map[State]string{
	StateIdle:      "IDLE",
	StatePaused:    "PAUSED",
	StateRunning:   "RUNNING",
	StateResting:   "REST",
	StateCompleted: "COMPLETED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Option configures an Engine.
type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRest enables or disables the automatic rest between exercises.
func WithRest(auto bool, seconds int) Option {
	return func(e *Engine) { e.SetRest(auto, seconds) }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

type Engine struct {
	notifier Notifier
	clock    Clock
	log      *slog.Logger

	autoRest     bool
	restDuration int

	prog             *program.Program
	state            State
	stepIndex        int
	cycle            int
	stepRemaining    int
	programRemaining int

	ticker     Ticker
	rest       RestCoordinator
	restHandle RestHandle
}

func New(opts ...Option) *Engine {
	e := &Engine{
		notifier: nopNotifier{},
		clock:    SystemClock,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    StateIdle,
		cycle:    1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetRest changes the rest configuration. A rest already in progress keeps
// its remaining time.
func (e *Engine) SetRest(auto bool, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	e.autoRest = auto
	e.restDuration = seconds
}

func (e *Engine) State() State { return e.state }
func (e *Engine) Loaded() bool { return e.prog != nil }
func (e *Engine) Active() bool { return e.state == StateRunning || e.state == StateResting }

// Load validates p and makes a private copy of it the current run, positioned
// at the first step and paused. Any run in progress is discarded silently.
func (e *Engine) Load(p program.Program) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c := p.Clone()
	e.cancelRest()
	e.ticker.Disarm()
	e.prog = &c
	e.rewind()
	e.state = StatePaused
	e.log.Info("program loaded", "program", c.Name, "steps", len(c.Steps), "cycles", c.CycleCount, "total", c.TotalDuration())
	return nil
}

// Start runs the clock. From Idle or Completed the run begins again from the
// first step.
func (e *Engine) Start() {
	if e.prog == nil {
		return
	}
	switch e.state {
	case StatePaused:
	case StateIdle, StateCompleted:
		e.rewind()
	default:
		return
	}

	first := e.atBeginning()
	e.state = StateRunning
	e.ticker.Reset(e.clock.Now())
	if first {
		e.emit(Event{Kind: WorkoutStarted})
	}
}

func (e *Engine) Pause() {
	if e.prog == nil || e.state != StateRunning {
		return
	}
	e.ticker.Disarm()
	e.state = StatePaused
	e.emit(Event{Kind: WorkoutPaused})
}

// Toggle pauses a running engine and starts a paused one.
func (e *Engine) Toggle() {
	switch e.state {
	case StateRunning:
		e.Pause()
	case StatePaused:
		e.Start()
	}
}

// Stop halts both clocks and rewinds to the first step. It is the universal
// cancellation point and emits WorkoutCompleted with Finished unset.
func (e *Engine) Stop() {
	if e.prog == nil {
		return
	}
	switch e.state {
	case StateRunning, StatePaused, StateResting:
	default:
		return
	}
	e.cancelRest()
	e.ticker.Disarm()
	e.rewind()
	e.state = StateIdle
	e.log.Info("workout stopped", "program", e.prog.Name)
	e.emit(Event{Kind: WorkoutCompleted})
}

// Skip ends the current exercise, or the current rest, immediately. Skipped
// exercise time leaves the program clock as well.
func (e *Engine) Skip() {
	if e.prog == nil {
		return
	}
	switch e.state {
	case StateRunning:
		e.programRemaining = max(0, e.programRemaining-e.stepRemaining)
		e.stepRemaining = 0
		e.advanceStep()
	case StateResting:
		e.rest.Cancel(e.restHandle)
		e.finishRest()
	}
}

// Tick applies elapsed seconds to the step clock. Seconds beyond the current
// step carry into the following steps (and rests), so a late tick never
// loses or double-counts time. The program clock drops by exactly elapsed
// only when no rest falls inside the tick; rest seconds are not program time.
func (e *Engine) Tick(elapsed int) {
	if e.prog == nil || e.state != StateRunning || elapsed <= 0 {
		return
	}
	e.spend(elapsed)
}

// RestTick applies elapsed seconds to the rest countdown. Seconds left when
// the rest ends go to the next step.
func (e *Engine) RestTick(elapsed int) {
	if e.prog == nil || e.state != StateResting || elapsed <= 0 {
		return
	}
	e.spend(elapsed)
}

// Poll reads the clock and applies whole elapsed seconds to whichever clock
// is active. Call it as often as convenient; sub-second calls do nothing.
func (e *Engine) Poll() {
	if !e.Active() {
		return
	}
	n := e.ticker.Elapsed(e.clock.Now())
	if n == 0 {
		return
	}
	if e.state == StateRunning {
		e.Tick(n)
	} else {
		e.RestTick(n)
	}
}

func (e *Engine) spend(secs int) {
	for secs > 0 {
		switch e.state {
		case StateRunning:
			used := min(secs, e.stepRemaining)
			e.stepRemaining -= used
			e.programRemaining = max(0, e.programRemaining-used)
			secs -= used
			if e.stepRemaining == 0 {
				e.advanceStep()
			}
		case StateResting:
			left := e.rest.Spend(secs)
			if left == secs {
				return
			}
			secs = left
		default:
			return
		}
	}
	if e.state == StateRunning && e.programRemaining == 0 {
		e.finish()
	}
}

// advanceStep closes the current step and either begins a rest or moves on.
func (e *Engine) advanceStep() {
	e.emit(Event{
		Kind:      ExerciseCompleted,
		Step:      e.prog.Steps[e.stepIndex],
		StepIndex: e.stepIndex,
		Cycle:     e.cycle,
	})

	if e.autoRest && e.restDuration > 0 && !e.prog.IsLastStep(e.stepIndex, e.cycle) {
		e.state = StateResting
		e.restHandle = e.rest.Begin(e.restDuration, e.finishRest)
		e.log.Debug("rest started", "seconds", e.restDuration, "after_step", e.stepIndex, "cycle", e.cycle)
		return
	}
	e.moveNext()
}

func (e *Engine) finishRest() {
	e.restHandle = 0
	e.state = StateRunning
	e.moveNext()
}

func (e *Engine) moveNext() {
	e.stepIndex++
	if e.stepIndex >= len(e.prog.Steps) {
		e.stepIndex = 0
		e.cycle++
	}
	if e.cycle > e.prog.CycleCount {
		e.finish()
		return
	}
	e.stepRemaining = e.prog.Steps[e.stepIndex].Duration()

	if next, ok := e.peek(1); ok {
		e.emit(Event{
			Kind:      ExerciseUpcoming,
			Step:      next.Step,
			StepIndex: next.StepIndex,
			Cycle:     next.Cycle,
		})
	}
}

// finish is natural completion: both clocks at zero, parked on the final step.
func (e *Engine) finish() {
	e.cancelRest()
	e.ticker.Disarm()
	e.stepIndex = len(e.prog.Steps) - 1
	e.cycle = e.prog.CycleCount
	e.stepRemaining = 0
	e.programRemaining = 0
	e.state = StateCompleted
	e.log.Info("workout completed", "program", e.prog.Name)
	e.emit(Event{Kind: WorkoutCompleted, Finished: true})
}

func (e *Engine) rewind() {
	e.stepIndex = 0
	e.cycle = 1
	e.stepRemaining = e.prog.Steps[0].Duration()
	e.programRemaining = e.prog.TotalDuration()
}

func (e *Engine) atBeginning() bool {
	return e.stepIndex == 0 && e.cycle == 1 && e.stepRemaining == e.prog.Steps[0].Duration()
}

func (e *Engine) cancelRest() {
	if e.restHandle != 0 {
		e.rest.Cancel(e.restHandle)
		e.restHandle = 0
	}
}

func (e *Engine) emit(ev Event) {
	ev.Program = e.prog.Name
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("notifier panicked", "event", ev.Kind.String(), "panic", r)
		}
	}()
	e.notifier.Notify(ev)
}
