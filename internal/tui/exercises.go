package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/program"
	"github.com/sadopc/pipefit/internal/store"
)

type exercisesModel struct {
	store  *store.Store
	width  int
	height int

	exercises []program.Exercise
	cursor    int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName     *string
	formDuration *string
}

func newExercisesModel(s *store.Store) exercisesModel {
	name, dur := "", ""
	return exercisesModel{
		store:        s,
		formName:     &name,
		formDuration: &dur,
	}
}

func (e *exercisesModel) setSize(w, h int) {
	e.width = w
	e.height = h
}

type exercisesDataMsg struct {
	exercises []program.Exercise
}

func (e exercisesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		exs, err := e.store.ListExercises()
		if err != nil {
			return errorStatus("Load exercises: %v", err)
		}
		return exercisesDataMsg{exercises: exs}
	}
}

func (e exercisesModel) update(msg tea.Msg) (exercisesModel, tea.Cmd) {
	if e.formActive && e.form != nil {
		return e.updateForm(msg)
	}

	switch msg := msg.(type) {
	case exercisesDataMsg:
		e.exercises = msg.exercises
		if e.cursor >= len(e.exercises) {
			e.cursor = max(0, len(e.exercises)-1)
		}
		return e, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if e.cursor > 0 {
				e.cursor--
			}
		case key.Matches(msg, keys.Down):
			if e.cursor < len(e.exercises)-1 {
				e.cursor++
			}
		case key.Matches(msg, keys.New):
			return e.showNewExerciseForm()
		case key.Matches(msg, keys.Delete):
			if len(e.exercises) > 0 {
				return e, e.deleteExercise(e.exercises[e.cursor])
			}
		}
	}
	return e, nil
}

func (e exercisesModel) deleteExercise(ex program.Exercise) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg {
			if err := e.store.DeleteExercise(ex.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return errorStatus("Delete %s: %v", ex.Name, err)
			}
			return statusMsg{text: "Deleted " + ex.Name}
		},
		e.refresh(),
	)
}

func (e exercisesModel) showNewExerciseForm() (exercisesModel, tea.Cmd) {
	*e.formName = ""
	*e.formDuration = "30"

	e.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Exercise Name").Value(e.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().Title("Duration (seconds)").Value(e.formDuration).
				Validate(validatePositive),
		),
	).WithShowHelp(true).WithShowErrors(true)

	e.formActive = true
	return e, e.form.Init()
}

func (e exercisesModel) updateForm(msg tea.Msg) (exercisesModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			e.formActive = false
			e.form = nil
			return e, nil
		}
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		e.formActive = false
		name := *e.formName
		secs, _ := strconv.Atoi(strings.TrimSpace(*e.formDuration))
		return e, tea.Sequence(
			func() tea.Msg {
				ex, err := e.store.CreateExercise(name, secs)
				if err != nil {
					return errorStatus("New exercise: %v", err)
				}
				return statusMsg{text: "Added " + ex.Name}
			},
			e.refresh(),
		)
	}

	return e, cmd
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}

func (e exercisesModel) view() string {
	w := e.width - 4
	if e.formActive && e.form != nil {
		title := titleStyle.Render("New Exercise")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", e.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Exercises")
	if len(e.exercises) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No exercises yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-32s %10s", "Name", "Duration")))

	for i, ex := range e.exercises {
		cursor := "  "
		style := normalItemStyle
		if i == e.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-32s %10s", cursor, ex.Name, formatClock(ex.Duration))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
