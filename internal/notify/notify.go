// Package notify turns engine events into user-facing notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sadopc/pipefit/internal/engine"
	"github.com/sadopc/pipefit/internal/program"
)

// Message is one rendered notification.
type Message struct {
	Title string
	Body  string
	Kind  engine.EventKind
	// Final is set for the message that ends a run, naturally or not.
	Final bool
}

// Sink delivers rendered messages somewhere: the desktop, a log, a test.
type Sink interface {
	Send(m Message) error
}

// Settings gates which events produce messages. The zero value sends nothing.
type Settings struct {
	Enabled  bool
	Start    bool
	Exercise bool
	Pause    bool
	Finish   bool
	Upcoming bool
}

// DefaultSettings enables everything.
func DefaultSettings() Settings {
	return Settings{Enabled: true, Start: true, Exercise: true, Pause: true, Finish: true, Upcoming: true}
}

func (s Settings) allows(k engine.EventKind) bool {
	if !s.Enabled {
		return false
	}
	switch k {
	case engine.WorkoutStarted:
		return s.Start
	case engine.WorkoutPaused:
		return s.Pause
	case engine.WorkoutCompleted:
		return s.Finish
	case engine.ExerciseCompleted:
		return s.Exercise
	case engine.ExerciseUpcoming:
		return s.Upcoming
	}
	return false
}

// Dispatcher is the engine.Notifier of the app. It renders each allowed event
// and fans it out to every sink.
type Dispatcher struct {
	settings Settings
	sinks    []Sink
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards.
func NewDispatcher(settings Settings, log *slog.Logger, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{settings: settings, sinks: sinks, log: log}
}

// SetSettings replaces the gates, e.g. after the settings view saves.
func (d *Dispatcher) SetSettings(s Settings) { d.settings = s }

func (d *Dispatcher) Settings() Settings { return d.settings }

// Notify implements engine.Notifier. Sink failures are logged, never returned.
func (d *Dispatcher) Notify(ev engine.Event) {
	if !d.settings.allows(ev.Kind) {
		return
	}
	m := Render(ev)
	for _, s := range d.sinks {
		d.send(s, m)
	}
}

func (d *Dispatcher) send(s Sink, m Message) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification sink panicked", "kind", m.Kind.String(), "panic", r)
		}
	}()
	if err := s.Send(m); err != nil {
		d.log.Warn("notification failed", "kind", m.Kind.String(), "err", err)
	}
}

// Render builds the message for an event regardless of settings.
func Render(ev engine.Event) Message {
	m := Message{Kind: ev.Kind}
	switch ev.Kind {
	case engine.WorkoutStarted:
		m.Title = "Workout started"
		m.Body = fmt.Sprintf("Started: %s", ev.Program)
	case engine.WorkoutPaused:
		m.Title = "Workout paused"
		m.Body = fmt.Sprintf("%s is paused", ev.Program)
	case engine.WorkoutCompleted:
		m.Final = true
		if ev.Finished {
			m.Title = "Workout complete"
			m.Body = fmt.Sprintf("Great job! %s is done.", ev.Program)
		} else {
			m.Title = "Workout stopped"
			m.Body = fmt.Sprintf("%s was stopped", ev.Program)
		}
	case engine.ExerciseCompleted:
		m.Title = "Exercise complete"
		m.Body = fmt.Sprintf("Done: %s", stepLabel(ev.Step))
	case engine.ExerciseUpcoming:
		m.Title = "Next exercise"
		m.Body = fmt.Sprintf("Get ready: %s", stepLabel(ev.Step))
	default:
		m.Title = ev.Kind.String()
	}
	return m
}

// stepLabel names a step, with its repetition when the exercise repeats.
func stepLabel(s program.Step) string {
	if s.Repeated() {
		return fmt.Sprintf("%s (%d/%d)", s.Exercise.Name, s.RepetitionIndex, s.RepetitionCount)
	}
	return s.Exercise.Name
}
