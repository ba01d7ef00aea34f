package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/program"
	"github.com/sadopc/pipefit/internal/store"
)

type workoutsModel struct {
	store  *store.Store
	width  int
	height int

	workouts []program.Program
	cursor   int
}

func newWorkoutsModel(s *store.Store) workoutsModel {
	return workoutsModel{store: s}
}

func (m *workoutsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type workoutsDataMsg struct {
	workouts []program.Program
}

func (m workoutsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ps, err := m.store.ListPrograms()
		if err != nil {
			return errorStatus("Load workouts: %v", err)
		}
		return workoutsDataMsg{workouts: ps}
	}
}

func (m workoutsModel) update(msg tea.Msg) (workoutsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case workoutsDataMsg:
		m.workouts = msg.workouts
		if m.cursor >= len(m.workouts) {
			m.cursor = max(0, len(m.workouts)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.workouts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(m.workouts) > 0 {
				id := m.workouts[m.cursor].ID
				return m, func() tea.Msg { return loadWorkoutMsg{id: id} }
			}
		case key.Matches(msg, keys.Delete):
			if len(m.workouts) > 0 {
				p := m.workouts[m.cursor]
				return m, tea.Sequence(
					func() tea.Msg {
						if err := m.store.DeleteProgram(p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
							return errorStatus("Delete %s: %v", p.Name, err)
						}
						return statusMsg{text: "Deleted " + p.Name}
					},
					m.refresh(),
				)
			}
		}
	}
	return m, nil
}

func (m workoutsModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Workouts")

	if len(m.workouts) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No workouts yet. Build one in the Builder tab."),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %6s %8s %10s", "Name", "Steps", "Cycles", "Total")))

	for i, p := range m.workouts {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		cycles := "-"
		if p.IsCyclic {
			cycles = fmt.Sprintf("×%d", p.CycleCount)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-28s %6d %8s %10s",
			cursor, p.Name, len(p.Steps), cycles, formatClock(p.TotalDuration()))))
	}

	if m.cursor < len(m.workouts) {
		rows = append(rows, "")
		rows = append(rows, subtitleStyle.Render("  "+summarizeSteps(m.workouts[m.cursor], w-6)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: load  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// summarizeSteps lists step names with runs of repetitions collapsed, e.g.
// "Plank ×3 · Squats".
func summarizeSteps(p program.Program, width int) string {
	var parts []string
	for _, s := range p.Steps {
		if s.RepetitionIndex > 1 {
			continue
		}
		if s.Repeated() {
			parts = append(parts, fmt.Sprintf("%s ×%d", s.Exercise.Name, s.RepetitionCount))
		} else {
			parts = append(parts, s.Exercise.Name)
		}
	}
	out := strings.Join(parts, " · ")
	if width > 3 && len([]rune(out)) > width {
		out = string([]rune(out)[:width-3]) + "..."
	}
	return out
}
