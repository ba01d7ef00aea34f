package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/program"
	"github.com/sadopc/pipefit/internal/store"
)

const (
	maxRepetitions = 99
	maxCycles      = 99
)

// builderModel composes a new workout from the exercise catalog. The
// selections are an ordered list, so one exercise may appear several times.
type builderModel struct {
	store  *store.Store
	width  int
	height int

	catalog    []program.Exercise
	cursor     int
	selections []program.Selection
	picked     int  // cursor over selections
	onPicked   bool // up/down move the picked cursor
	isCyclic   bool
	cycles     int

	formActive bool
	form       *huh.Form
	formName   *string
}

func newBuilderModel(s *store.Store) builderModel {
	name := ""
	return builderModel{
		store:    s,
		cycles:   1,
		formName: &name,
	}
}

func (b *builderModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

type catalogDataMsg struct {
	exercises []program.Exercise
}

func (b builderModel) refresh() tea.Cmd {
	return func() tea.Msg {
		exs, err := b.store.ListExercises()
		if err != nil {
			return errorStatus("Load exercises: %v", err)
		}
		return catalogDataMsg{exercises: exs}
	}
}

func (b builderModel) update(msg tea.Msg) (builderModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	switch msg := msg.(type) {
	case catalogDataMsg:
		b.catalog = msg.exercises
		b.dropMissing()
		if b.cursor >= len(b.catalog) {
			b.cursor = max(0, len(b.catalog)-1)
		}
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			b.moveCursor(-1)
		case key.Matches(msg, keys.Down):
			b.moveCursor(1)
		case key.Matches(msg, keys.Right):
			if len(b.selections) > 0 {
				b.onPicked = true
			}
		case key.Matches(msg, keys.Left):
			b.onPicked = false
		case key.Matches(msg, keys.Enter):
			if len(b.catalog) > 0 {
				b.add(b.catalog[b.cursor].ID)
			}
		case key.Matches(msg, keys.Delete):
			b.remove()
		case key.Matches(msg, keys.More):
			b.adjustReps(1)
		case key.Matches(msg, keys.Less):
			b.adjustReps(-1)
		case key.Matches(msg, keys.Cyclic):
			b.isCyclic = !b.isCyclic
		case key.Matches(msg, keys.CycleUp):
			if b.isCyclic && b.cycles < maxCycles {
				b.cycles++
			}
		case key.Matches(msg, keys.CycleDown):
			if b.isCyclic && b.cycles > 1 {
				b.cycles--
			}
		case key.Matches(msg, keys.New):
			if len(b.selections) == 0 {
				return b, func() tea.Msg { return errorStatus("Pick at least one exercise first") }
			}
			return b.showNameForm()
		}
	}
	return b, nil
}

func (b *builderModel) moveCursor(delta int) {
	if b.onPicked {
		b.picked = clamp(b.picked+delta, 0, len(b.selections)-1)
		return
	}
	b.cursor = clamp(b.cursor+delta, 0, len(b.catalog)-1)
}

// add appends the exercise with one repetition and puts the picked cursor
// on the new row.
func (b *builderModel) add(id string) {
	b.selections = append(b.selections, program.Selection{ExerciseID: id, RepetitionCount: 1})
	b.picked = len(b.selections) - 1
}

// remove drops the selection under the picked cursor.
func (b *builderModel) remove() {
	if len(b.selections) == 0 {
		return
	}
	b.selections = append(b.selections[:b.picked], b.selections[b.picked+1:]...)
	b.clampPicked()
}

func (b *builderModel) adjustReps(delta int) {
	if len(b.selections) == 0 {
		return
	}
	n := b.selections[b.picked].RepetitionCount + delta
	if n >= 1 && n <= maxRepetitions {
		b.selections[b.picked].RepetitionCount = n
	}
}

func (b *builderModel) clampPicked() {
	b.picked = clamp(b.picked, 0, len(b.selections)-1)
	if len(b.selections) == 0 {
		b.onPicked = false
	}
}

// timesPicked counts the selections of one exercise.
func (b builderModel) timesPicked(id string) int {
	n := 0
	for _, sel := range b.selections {
		if sel.ExerciseID == id {
			n++
		}
	}
	return n
}

// dropMissing forgets selections whose exercise left the catalog.
func (b *builderModel) dropMissing() {
	known := make(map[string]bool, len(b.catalog))
	for _, ex := range b.catalog {
		known[ex.ID] = true
	}
	kept := b.selections[:0]
	for _, sel := range b.selections {
		if known[sel.ExerciseID] {
			kept = append(kept, sel)
		}
	}
	b.selections = kept
	b.clampPicked()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// estimate returns the total duration the current selection would run for.
func (b builderModel) estimate() int {
	byID := make(map[string]int, len(b.catalog))
	for _, ex := range b.catalog {
		byID[ex.ID] = ex.Duration
	}
	total := 0
	for _, sel := range b.selections {
		total += byID[sel.ExerciseID] * sel.RepetitionCount
	}
	if b.isCyclic {
		total *= b.cycles
	}
	return total
}

func (b builderModel) build(name string) (program.Program, error) {
	return program.Build(name, b.selections, b.isCyclic, b.cycles, b.catalog)
}

func (b builderModel) showNameForm() (builderModel, tea.Cmd) {
	*b.formName = ""
	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Workout Name").Value(b.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b builderModel) updateForm(msg tea.Msg) (builderModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		p, err := b.build(*b.formName)
		if err != nil {
			return b, func() tea.Msg { return errorStatus("Build: %v", err) }
		}
		if err := b.store.SaveProgram(p); err != nil {
			return b, func() tea.Msg { return errorStatus("Save workout: %v", err) }
		}
		b.selections = nil
		b.picked = 0
		b.onPicked = false
		b.isCyclic = false
		b.cycles = 1
		return b, func() tea.Msg { return workoutSavedMsg{name: p.Name} }
	}

	return b, cmd
}

func (b builderModel) view() string {
	w := b.width - 4
	if b.formActive && b.form != nil {
		title := titleStyle.Render("Save Workout")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", b.form.View()))
	}

	title := titleStyle.Render("Builder")
	if len(b.catalog) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("The catalog is empty. Add exercises in the Exercises tab first."),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, ex := range b.catalog {
		cursor := "  "
		style := normalItemStyle
		if i == b.cursor && !b.onPicked {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "   "
		if n := b.timesPicked(ex.ID); n > 0 {
			mark = pickedItemStyle.Render(fmt.Sprintf("%d× ", n))
		}
		rows = append(rows, style.Render(cursor)+mark+style.Render(fmt.Sprintf("%-28s %8s", ex.Name, formatClock(ex.Duration))))
	}

	rows = append(rows, "", subtitleStyle.Render("Workout"))
	if len(b.selections) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing picked yet."))
	}
	names := make(map[string]string, len(b.catalog))
	for _, ex := range b.catalog {
		names[ex.ID] = ex.Name
	}
	for i, sel := range b.selections {
		cursor := "  "
		style := normalItemStyle
		if i == b.picked && b.onPicked {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%2d. %-28s", cursor, i+1, names[sel.ExerciseID]))+
			highlightStyle.Render(fmt.Sprintf(" ×%d", sel.RepetitionCount)))
	}

	mode := "single pass"
	if b.isCyclic {
		mode = fmt.Sprintf("cyclic × %d", b.cycles)
	}
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s   %s %s",
		mutedStyle.Render("Mode:"), highlightStyle.Render(mode),
		mutedStyle.Render("Total:"), highlightStyle.Render(formatClock(b.estimate())),
	))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: add  ←/→: catalog/workout  +/-: reps  d: remove  c: cyclic  </>: cycles  n: name & save"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
