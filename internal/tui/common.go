package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewCalendar
	viewSchedule
	viewHistory
)

var viewNames = []string{"Dashboard", "Calendar", "Schedule", "History"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type profileChangedMsg struct {
	profile store.Profile
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// relativeDeadline renders a deadline against the current day: "today",
// "tomorrow", "3 days from now", "1 week ago".
func relativeDeadline(t store.Task, now time.Time) string {
	if !t.HasDeadline() {
		return "no date"
	}
	day := today(now)
	switch days := int(t.Deadline.Sub(day).Hours() / 24); days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case -1:
		return "yesterday"
	}
	return humanize.RelTime(t.Deadline, day, "ago", "from now")
}

// deadlineStyle marks overdue tasks red and tasks due within two days amber.
func deadlineStyle(t store.Task, now time.Time) lipgloss.Style {
	if !t.HasDeadline() {
		return mutedStyle
	}
	day := today(now)
	switch {
	case t.Deadline.Before(day):
		return errorStyle
	case t.Deadline.Before(day.AddDate(0, 0, 2)):
		return warningStyle
	}
	return normalItemStyle
}

// typeColor picks a stable color for a task type within a profile. Types outside
// the profile's current list share the muted color.
func typeColor(profile store.Profile, typ string) lipgloss.Color {
	i := slices.Index(tasks.AllowedTypes(profile), typ)
	if i < 0 {
		return colorMuted
	}
	return typeColors[i%len(typeColors)]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
