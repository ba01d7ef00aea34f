package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/engine"
	"github.com/sadopc/pipefit/internal/notify"
	"github.com/sadopc/pipefit/internal/program"
	"github.com/sadopc/pipefit/internal/store"
)

const upcomingCount = 5

// currentModel plays the loaded workout. The engine, the event queue and the
// inbox are pointers shared by every copy of the model.
type currentModel struct {
	store  *store.Store
	engine *engine.Engine
	events *eventQueue
	inbox  *notify.Recorder
	log    *slog.Logger
	width  int
	height int

	sound bool

	// run is the history record of the playback in progress.
	run    *store.Run
	worked int

	bar progress.Model
}

func newCurrentModel(s *store.Store, e *engine.Engine, q *eventQueue, inbox *notify.Recorder, log *slog.Logger) currentModel {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return currentModel{
		store:  s,
		engine: e,
		events: q,
		inbox:  inbox,
		log:    log,
		sound:  true,
		bar:    progress.New(progress.WithGradient(string(colorPrimary), string(colorSuccess)), progress.WithoutPercentage()),
	}
}

func (c *currentModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.bar.Width = max(10, w-16)
}

// load hands p to the engine. A run still in progress ends as stopped.
func (c currentModel) load(p program.Program) (currentModel, tea.Cmd) {
	var cmds []tea.Cmd
	if c.run != nil {
		c.observe()
		cmds = append(cmds, c.finishRun(false))
	}
	if err := c.engine.Load(p); err != nil {
		return c, func() tea.Msg { return errorStatus("Load %s: %v", p.Name, err) }
	}
	c.worked = 0
	cmds = append(cmds, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Loaded %s (%s)", p.Name, formatClock(p.TotalDuration()))}
	})
	return c, tea.Batch(cmds...)
}

func (c currentModel) update(msg tea.Msg) (currentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		c.engine.Poll()
		return c.flush()

	case tea.KeyMsg:
		if !c.engine.Loaded() {
			return c, nil
		}
		switch {
		case key.Matches(msg, keys.Start):
			c.engine.Start()
		case key.Matches(msg, keys.Pause):
			c.engine.Toggle()
		case key.Matches(msg, keys.Skip):
			c.engine.Skip()
		case key.Matches(msg, keys.Stop):
			c.observe()
			c.engine.Stop()
		default:
			return c, nil
		}
		return c.flush()
	}
	return c, nil
}

// shutdown stops playback so an unfinished run is recorded before exit.
func (c currentModel) shutdown() currentModel {
	if c.run == nil {
		return c
	}
	c.observe()
	c.engine.Stop()
	c, _ = c.flush()
	return c
}

// observe records how much program time the active run has consumed.
func (c *currentModel) observe() {
	snap := c.engine.Snapshot()
	switch snap.State {
	case engine.StateRunning, engine.StatePaused, engine.StateResting:
		c.worked = snap.TotalDuration - snap.ProgramRemaining
	}
}

// flush turns queued engine events into history records and the
// notifications collected for the status line.
func (c currentModel) flush() (currentModel, tea.Cmd) {
	c.observe()
	var cmds []tea.Cmd
	for _, ev := range c.events.drain() {
		switch ev.Kind {
		case engine.WorkoutStarted:
			cmds = append(cmds, c.startRun(ev.Program))
		case engine.WorkoutCompleted:
			if ev.Finished {
				c.worked = c.engine.Snapshot().TotalDuration
			}
			cmds = append(cmds, c.finishRun(ev.Finished))
		}
	}
	if cmd := c.statusFromInbox(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return c, nil
	}
	return c, tea.Batch(cmds...)
}

func (c *currentModel) startRun(name string) tea.Cmd {
	if c.run != nil {
		return nil
	}
	run, err := c.store.StartRun(c.engine.Snapshot().ProgramID, name)
	if err != nil {
		c.log.Error("start run", "workout", name, "err", err)
		return func() tea.Msg { return errorStatus("Record run: %v", err) }
	}
	c.run = run
	c.worked = 0
	c.log.Info("run started", "run", run.ID, "workout", name)
	return nil
}

func (c *currentModel) finishRun(finished bool) tea.Cmd {
	if c.run == nil {
		return nil
	}
	status := store.RunStopped
	if finished {
		status = store.RunCompleted
	}
	id, worked := c.run.ID, c.worked
	c.run = nil
	if err := c.store.FinishRun(id, status, int64(worked)); err != nil {
		c.log.Error("finish run", "run", id, "err", err)
		return func() tea.Msg { return errorStatus("Record run: %v", err) }
	}
	c.log.Info("run finished", "run", id, "status", string(status), "work_seconds", worked)
	return nil
}

// statusFromInbox shows the newest notification on the status line, ringing
// the bell when an exercise or the workout ends.
func (c currentModel) statusFromInbox() tea.Cmd {
	if c.inbox == nil {
		return nil
	}
	msgs := c.inbox.Drain()
	if len(msgs) == 0 {
		return nil
	}
	bell := false
	for _, m := range msgs {
		if m.Kind == engine.ExerciseCompleted || m.Final {
			bell = true
		}
	}
	last := msgs[len(msgs)-1]
	text := last.Title + ": " + last.Body
	if bell && c.sound {
		text += " \a"
	}
	return func() tea.Msg { return statusMsg{text: text} }
}

func (c currentModel) view() string {
	w := c.width - 4
	if !c.engine.Loaded() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Current Workout"),
			"",
			mutedStyle.Render("No workout loaded. Pick one in the Workouts tab."),
		))
	}

	snap := c.engine.Snapshot()
	title := titleStyle.Render(snap.ProgramName) + "  " + stateBadge(snap.State)

	var clock, label string
	inner := max(10, w-6)
	switch snap.State {
	case engine.StateResting:
		clock = restStyle.Width(inner).Render(formatClock(snap.RestRemaining))
		label = restStyle.Render("REST")
	case engine.StateCompleted:
		clock = successStyle.Bold(true).Width(inner).Align(lipgloss.Center).Render("Done!")
		label = successStyle.Bold(true).Render("WORKOUT COMPLETE")
	case engine.StateRunning:
		clock = countdownStyle.Width(inner).Render(formatClock(snap.StepRemaining))
		label = countdownStyle.Render(snap.Step.Exercise.Name)
	default:
		clock = countdownPausedStyle.Width(inner).Render(formatClock(snap.StepRemaining))
		label = countdownPausedStyle.Render(snap.Step.Exercise.Name)
	}

	var position []string
	if snap.State != engine.StateCompleted {
		if snap.Step.Repeated() {
			position = append(position, fmt.Sprintf("Rep %d/%d", snap.Step.RepetitionIndex, snap.Step.RepetitionCount))
		}
		position = append(position, fmt.Sprintf("Step %d/%d", snap.StepIndex+1, snap.StepCount))
		if snap.IsCyclic {
			position = append(position, fmt.Sprintf("Cycle %d/%d", snap.Cycle, snap.Cycles))
		}
	}

	totals := fmt.Sprintf("%s %s  %s %s",
		mutedStyle.Render("Remaining"), highlightStyle.Render(formatClock(snap.ProgramRemaining)),
		mutedStyle.Render("of"), highlightStyle.Render(formatClock(snap.TotalDuration)),
	)

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		clock,
		label,
		mutedStyle.Render(strings.Join(position, "  ·  ")),
		"",
		c.bar.ViewAs(snap.Progress()),
		totals,
	)

	parts := []string{content}
	if up := c.renderUpcoming(snap); up != "" {
		parts = append(parts, "", up)
	}
	parts = append(parts, "", mutedStyle.Render(controlsFor(snap.State)))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (c currentModel) renderUpcoming(snap engine.Snapshot) string {
	next := c.engine.Upcoming(upcomingCount)
	if len(next) == 0 {
		return ""
	}
	rows := []string{subtitleStyle.Render("Up next")}
	for _, p := range next {
		name := p.Step.Exercise.Name
		if p.Step.Repeated() {
			name += fmt.Sprintf(" (%d/%d)", p.Step.RepetitionIndex, p.Step.RepetitionCount)
		}
		cycle := ""
		if snap.IsCyclic && p.Cycle != snap.Cycle {
			cycle = mutedStyle.Render(fmt.Sprintf("  cycle %d", p.Cycle))
		}
		rows = append(rows, fmt.Sprintf("  %-30s %s%s", name, formatClock(p.Step.Duration()), cycle))
	}
	return strings.Join(rows, "\n")
}

func stateBadge(s engine.State) string {
	switch s {
	case engine.StateRunning:
		return successStyle.Render("● " + s.String())
	case engine.StateResting:
		return restStyle.Render("◌ " + s.String())
	case engine.StatePaused:
		return warningStyle.Render("⏸ " + s.String())
	case engine.StateCompleted:
		return successStyle.Render("✓ " + s.String())
	}
	return mutedStyle.Render(s.String())
}

func controlsFor(s engine.State) string {
	switch s {
	case engine.StateRunning:
		return "space: pause  n: skip  x: stop"
	case engine.StateResting:
		return "n: skip rest  x: stop"
	case engine.StatePaused:
		return "s/space: resume  x: stop"
	}
	return "s: start"
}
