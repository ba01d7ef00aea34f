package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/notify"
	"github.com/sadopc/pipefit/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	prefs      store.Preferences
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	draft        *store.Preferences
	restDuration *string
}

func newSettingsModel(s *store.Store) settingsModel {
	draft := store.DefaultPreferences()
	rest := ""
	return settingsModel{
		store:        s,
		prefs:        draft,
		draft:        &draft,
		restDuration: &rest,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	prefs store.Preferences
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{prefs: s.store.GetPreferences()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.prefs = msg.prefs
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.draft = s.prefs
	*s.restDuration = strconv.Itoa(s.prefs.RestDuration)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Rest between exercises").Value(&s.draft.AutoRest),
			huh.NewInput().Title("Rest duration (seconds)").Value(s.restDuration).
				Validate(validateNonNegative),
			huh.NewConfirm().Title("Terminal bell").Value(&s.draft.Sound),
		).Title("Workout"),
		huh.NewGroup(
			huh.NewConfirm().Title("Notifications").Value(&s.draft.NotifyEnabled),
			huh.NewConfirm().Title("Workout started").Value(&s.draft.NotifyStart),
			huh.NewConfirm().Title("Exercise complete").Value(&s.draft.NotifyExercise),
			huh.NewConfirm().Title("Workout paused").Value(&s.draft.NotifyPause),
			huh.NewConfirm().Title("Workout complete").Value(&s.draft.NotifyFinish),
			huh.NewConfirm().Title("Next exercise").Value(&s.draft.NotifyUpcoming),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		p := *s.draft
		p.RestDuration, _ = strconv.Atoi(strings.TrimSpace(*s.restDuration))
		if err := s.store.SavePreferences(p); err != nil {
			return s, func() tea.Msg { return errorStatus("Save settings: %v", err) }
		}
		s.prefs = p
		return s, func() tea.Msg { return preferencesSavedMsg{} }
	}

	return s, cmd
}

func validateNonNegative(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of seconds")
	}
	return nil
}

// notifySettings maps stored preferences onto the dispatcher's gates.
func notifySettings(p store.Preferences) notify.Settings {
	return notify.Settings{
		Enabled:  p.NotifyEnabled,
		Start:    p.NotifyStart,
		Exercise: p.NotifyExercise,
		Pause:    p.NotifyPause,
		Finish:   p.NotifyFinish,
		Upcoming: p.NotifyUpcoming,
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rest := "off"
	if s.prefs.AutoRest {
		rest = fmt.Sprintf("%d s", s.prefs.RestDuration)
	}
	entries := []struct{ label, value string }{
		{"Rest between exercises", rest},
		{"Terminal bell", onOff(s.prefs.Sound)},
		{"Notifications", onOff(s.prefs.NotifyEnabled)},
		{"  workout started", onOff(s.prefs.NotifyStart)},
		{"  exercise complete", onOff(s.prefs.NotifyExercise)},
		{"  workout paused", onOff(s.prefs.NotifyPause)},
		{"  workout complete", onOff(s.prefs.NotifyFinish)},
		{"  next exercise", onOff(s.prefs.NotifyUpcoming)},
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"))
	rows = append(rows, "")
	for _, e := range entries {
		label := lipgloss.NewStyle().Width(26).Render(e.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(e.value)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
