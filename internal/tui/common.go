package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/pipefit/internal/engine"
)

// viewState represents the currently active view.
type viewState int

const (
	viewExercises viewState = iota
	viewBuilder
	viewWorkouts
	viewCurrent
	viewHistory
	viewSettings
)

var viewNames = []string{"Exercises", "Builder", "Workouts", "Current", "History", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// workoutSavedMsg is sent by the builder after a program was stored.
type workoutSavedMsg struct {
	name string
}

// loadWorkoutMsg asks the app to hand a program to the engine.
type loadWorkoutMsg struct {
	id string
}

// preferencesSavedMsg carries freshly saved settings to the engine and
// the dispatcher.
type preferencesSavedMsg struct{}

func errorStatus(format string, args ...any) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, args...), isError: true}
}

// eventQueue buffers engine events between Update calls.
type eventQueue struct {
	events []engine.Event
}

func (q *eventQueue) Notify(ev engine.Event) { q.events = append(q.events, ev) }

func (q *eventQueue) drain() []engine.Event {
	out := q.events
	q.events = nil
	return out
}

// fanout delivers each event to every notifier in order.
type fanout []engine.Notifier

func (f fanout) Notify(ev engine.Event) {
	for _, n := range f {
		n.Notify(ev)
	}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatClock renders a countdown as mm:ss, switching to h:mm:ss past an hour.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(secs int64) string {
	return fmt.Sprintf("%.1fm", float64(secs)/60)
}
