package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
)

type historyModel struct {
	tracker *tasks.Tracker
	profile store.Profile
	width   int
	height  int

	completed []store.Task
	cursor    int
}

func newHistoryModel(tr *tasks.Tracker, profile store.Profile) historyModel {
	return historyModel{tracker: tr, profile: profile}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	profile   store.Profile
	completed []store.Task
	err       error
}

// refresh loads history rows, or completed rows left in the active table when
// completion happens in place.
func (h historyModel) refresh() tea.Cmd {
	tr, profile := h.tracker, h.profile
	return func() tea.Msg {
		if tr.Policy() == tasks.PolicyInPlace {
			all, err := tr.ListAll(profile)
			var done []store.Task
			for _, t := range all {
				if t.Status == store.StatusCompleted {
					done = append(done, t)
				}
			}
			return historyDataMsg{profile: profile, completed: done, err: err}
		}
		completed, err := tr.ListHistory(profile)
		return historyDataMsg{profile: profile, completed: completed, err: err}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.profile != h.profile {
			return h, nil
		}
		if msg.err != nil {
			return h, errorStatus("Load error", msg.err)
		}
		h.completed = msg.completed
		if h.cursor >= len(h.completed) {
			h.cursor = max(0, len(h.completed)-1)
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.completed)-1 {
				h.cursor++
			}
		}
	}
	return h, nil
}

func (h historyModel) view() string {
	w := h.width - 4
	title := titleStyle.Render(fmt.Sprintf("%s Task History", h.profile))

	if len(h.completed) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No completed tasks yet."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-2s %-12s %-24s %-16s %s", "", "Type", "Title", "Subject/Project", "Deadline")))

	for i, t := range h.completed {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := successStyle.Render("✓")
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-12s %-24s %-16s %s",
			cursor, check, truncate(t.Type, 12), truncate(t.Title, 24), truncate(t.Subject, 16), t.DeadlineString())))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
