package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/engine"
	"github.com/sadopc/pipefit/internal/export"
	"github.com/sadopc/pipefit/internal/notify"
	"github.com/sadopc/pipefit/internal/store"
)

const defaultTickInterval = 100 * time.Millisecond

// Options wires the app to its surroundings. The zero value is usable.
type Options struct {
	// TickInterval is how often the engine is polled.
	TickInterval time.Duration
	// Sinks receive rendered notifications in addition to the status line.
	Sinks  []notify.Sink
	Clock  engine.Clock
	Logger *slog.Logger
	// ExportDir is where the export picker writes files. Defaults to the
	// home directory.
	ExportDir string
}

var exportFormats = []string{"Exercises (JSON)", "Workouts (JSON)", "Backup (JSON)", "History (CSV)"}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *engine.Engine
	notify *notify.Dispatcher
	log    *slog.Logger
	width  int
	height int

	tickInterval time.Duration
	exportDir    string

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	exercises exercisesModel
	builder   builderModel
	workouts  workoutsModel
	current   currentModel
	history   historyModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(s *store.Store, opts Options) App {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	dir := opts.ExportDir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}

	prefs := s.GetPreferences()
	inbox := &notify.Recorder{}
	sinks := append(append([]notify.Sink{}, opts.Sinks...), inbox)
	dispatcher := notify.NewDispatcher(notifySettings(prefs), log, sinks...)

	queue := &eventQueue{}
	eng := engine.New(
		engine.WithNotifier(fanout{queue, dispatcher}),
		engine.WithClock(opts.Clock),
		engine.WithLogger(log),
		engine.WithRest(prefs.AutoRest, prefs.RestDuration),
	)

	h := help.New()
	h.ShowAll = false

	current := newCurrentModel(s, eng, queue, inbox, log)
	current.sound = prefs.Sound

	return App{
		store:        s,
		engine:       eng,
		notify:       dispatcher,
		log:          log,
		tickInterval: interval,
		exportDir:    dir,
		activeView:   viewExercises,
		exercises:    newExercisesModel(s),
		builder:      newBuilderModel(s),
		workouts:     newWorkoutsModel(s),
		current:      current,
		history:      newHistoryModel(s),
		settings:     newSettingsModel(s),
		help:         h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.exercises.refresh(),
		a.settings.refresh(),
		a.tickCmd(),
	)
}

func (a App) tickCmd() tea.Cmd {
	return tea.Tick(a.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.exercises.setSize(a.width, contentHeight)
		a.builder.setSize(a.width, contentHeight)
		a.workouts.setSize(a.width, contentHeight)
		a.current.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.current = a.current.shutdown()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewExercises)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewBuilder)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewWorkouts)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewCurrent)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewHistory)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, a.tickCmd())
		// Ticks always drive the engine, whatever view is shown.
		var cmd tea.Cmd
		a.current, cmd = a.current.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		if msg.isError {
			a.log.Warn("status", "message", msg.text)
		}
		return a, nil

	case loadWorkoutMsg:
		p, err := a.store.GetProgram(msg.id)
		if err != nil {
			a.status, a.isErr = fmt.Sprintf("Load workout: %v", err), true
			return a, nil
		}
		var cmd tea.Cmd
		a.current, cmd = a.current.load(*p)
		a.activeView = viewCurrent
		return a, cmd

	case workoutSavedMsg:
		a.status, a.isErr = "Saved "+msg.name, false
		return a, a.workouts.refresh()

	case preferencesSavedMsg:
		a.applyPreferences(a.store.GetPreferences())
		a.status, a.isErr = "Settings saved", false
		return a, a.settings.refresh()

	case exportDoneMsg:
		a.status, a.isErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// applyPreferences pushes stored settings into the running components.
// A rest already counting down keeps its remaining time.
func (a *App) applyPreferences(p store.Preferences) {
	a.engine.SetRest(p.AutoRest, p.RestDuration)
	a.notify.SetSettings(notifySettings(p))
	a.current.sound = p.Sound
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewExercises:
		a.exercises, cmd = a.exercises.update(msg)
	case viewBuilder:
		a.builder, cmd = a.builder.update(msg)
	case viewWorkouts:
		a.workouts, cmd = a.workouts.update(msg)
	case viewCurrent:
		a.current, cmd = a.current.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewExercises:
		return a.exercises.formActive
	case viewBuilder:
		return a.builder.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewExercises:
		return a.exercises.refresh()
	case viewBuilder:
		return a.builder.refresh()
	case viewWorkouts:
		return a.workouts.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewExercises:
		content = a.exercises.view()
	case viewBuilder:
		content = a.builder.view()
	case viewWorkouts:
		content = a.workouts.view()
	case viewCurrent:
		content = a.current.view()
	case viewHistory:
		content = a.history.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pipefit")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Playback indicator in footer
	runInfo := ""
	snap := a.engine.Snapshot()
	switch snap.State {
	case engine.StateRunning:
		runInfo = successStyle.Render(" ● " + formatClock(snap.StepRemaining))
	case engine.StateResting:
		runInfo = restStyle.Render(" ◌ rest " + formatClock(snap.RestRemaining))
	case engine.StatePaused:
		if a.current.run != nil {
			runInfo = warningStyle.Render(" ⏸ " + formatClock(snap.StepRemaining))
		}
	}

	left := footerStyle.Render(helpView)
	right := runInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s, dir := a.store, a.exportDir
	return func() tea.Msg {
		dateStr := time.Now().Format("2006-01-02")
		var (
			path string
			err  error
		)
		switch format {
		case 0:
			path = filepath.Join(dir, fmt.Sprintf("pipefit-exercises-%s.json", dateStr))
			err = exportExercises(s, path)
		case 1:
			path = filepath.Join(dir, fmt.Sprintf("pipefit-workouts-%s.json", dateStr))
			err = exportWorkouts(s, path)
		case 2:
			path = filepath.Join(dir, fmt.Sprintf("pipefit-backup-%s.json", dateStr))
			err = exportBackup(s, path)
		default:
			path = filepath.Join(dir, fmt.Sprintf("pipefit-history-%s.csv", dateStr))
			err = exportHistory(s, path)
		}
		if err != nil {
			return errorStatus("Export error: %v", err)
		}
		return exportDoneMsg{path: path}
	}
}

func exportExercises(s *store.Store, path string) error {
	exs, err := s.ListExercises()
	if err != nil {
		return err
	}
	return export.WriteExercises(exs, path)
}

func exportWorkouts(s *store.Store, path string) error {
	ps, err := s.ListPrograms()
	if err != nil {
		return err
	}
	return export.WriteWorkouts(ps, path)
}

func exportBackup(s *store.Store, path string) error {
	exs, err := s.ListExercises()
	if err != nil {
		return err
	}
	ps, err := s.ListPrograms()
	if err != nil {
		return err
	}
	return export.WriteBackup(exs, ps, time.Now(), path)
}

func exportHistory(s *store.Store, path string) error {
	runs, err := s.ListRuns(0)
	if err != nil {
		return err
	}
	return export.RunsToCSV(runs, path)
}
