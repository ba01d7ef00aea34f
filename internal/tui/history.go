package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pipefit/internal/store"
)

const recentRunCount = 8

type historyModel struct {
	store  *store.Store
	width  int
	height int

	days   []store.DailyTraining
	stats  store.RunStats
	runs   []store.Run
	offset int // 7-day blocks back from today (0 = current)

	now   func() time.Time
	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	days  []store.DailyTraining
	stats store.RunStats
	runs  []store.Run
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := h.dateRange()
		days, err := h.store.GetDailyTraining(from, to)
		if err != nil {
			return errorStatus("History: %v", err)
		}
		stats, err := h.store.GetRunStats(from, to)
		if err != nil {
			return errorStatus("History: %v", err)
		}
		runs, err := h.store.ListRuns(recentRunCount)
		if err != nil {
			return errorStatus("History: %v", err)
		}
		return historyDataMsg{days: days, stats: stats, runs: runs}
	}
}

// dateRange is the 7-day window ending today, shifted back by offset weeks.
func (h historyModel) dateRange() (time.Time, time.Time) {
	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*h.offset)
	return end.AddDate(0, 0, -7), end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.days = msg.days
		h.stats = msg.stats
		h.runs = msg.runs
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			return h, h.refresh()
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := max(20, h.width-8)
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DailyTraining, len(h.days))
	for _, d := range h.days {
		byDate[d.Date] = d
	}

	from, to := h.dateRange()
	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		minutes := float64(byDate[d.Format("2006-01-02")].TotalSeconds) / 60
		style := barStyle
		if minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "minutes", Value: minutes, Style: style}},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("History"), "  ", dateLabel)

	summary := fmt.Sprintf("  %s %s   %s %s   %s %s",
		mutedStyle.Render("Trained"), highlightStyle.Render(formatMinutes(h.stats.TotalSeconds)),
		mutedStyle.Render("Completed"), successStyle.Render(fmt.Sprint(h.stats.Completed)),
		mutedStyle.Render("Stopped"), warningStyle.Render(fmt.Sprint(h.stats.Stopped)),
	)

	nav := mutedStyle.Render("  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", summary, "", h.renderRuns(w), "", nav,
		),
	)
}

func (h historyModel) renderRuns(w int) string {
	if len(h.runs) == 0 {
		return mutedStyle.Render("  No runs recorded yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-17s %-24s %-10s %10s", "Started", "Workout", "Status", "Work")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 64))))

	for _, r := range h.runs {
		status := string(r.Status)
		switch r.Status {
		case store.RunCompleted:
			status = successStyle.Render(fmt.Sprintf("%-10s", status))
		case store.RunStopped:
			status = warningStyle.Render(fmt.Sprintf("%-10s", status))
		default:
			status = highlightStyle.Render(fmt.Sprintf("%-10s", status))
		}
		rows = append(rows, fmt.Sprintf("  %-17s %-24s %s %10s",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.WorkoutName, status, formatSeconds(r.WorkSeconds),
		))
	}
	return strings.Join(rows, "\n")
}
