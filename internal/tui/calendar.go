package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
)

const calendarDays = 14

type calendarModel struct {
	tracker *tasks.Tracker
	profile store.Profile
	now     func() time.Time
	width   int
	height  int

	upcoming []store.Task
	offset   int // 14-day windows from today (0 = starting today)

	chart barchart.Model
}

func newCalendarModel(tr *tasks.Tracker, profile store.Profile) calendarModel {
	return calendarModel{
		tracker: tr,
		profile: profile,
		now:     time.Now,
		chart:   barchart.New(60, 12),
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	profile  store.Profile
	offset   int
	upcoming []store.Task
	err      error
}

func (c calendarModel) refresh() tea.Cmd {
	tr, profile, offset := c.tracker, c.profile, c.offset
	from, _ := c.dateRange()
	return func() tea.Msg {
		upcoming, err := tr.Upcoming(profile, from, calendarDays)
		return calendarDataMsg{profile: profile, offset: offset, upcoming: upcoming, err: err}
	}
}

// dateRange returns the half-open window of days shown.
func (c calendarModel) dateRange() (time.Time, time.Time) {
	start := today(c.now()).AddDate(0, 0, calendarDays*c.offset)
	return start, start.AddDate(0, 0, calendarDays)
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		if msg.profile != c.profile || msg.offset != c.offset {
			return c, nil
		}
		if msg.err != nil {
			return c, errorStatus("Load error", msg.err)
		}
		c.upcoming = msg.upcoming
		c.buildChart()
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			c.offset--
			return c, c.refresh()
		case key.Matches(msg, keys.Right):
			c.offset++
			return c, c.refresh()
		}
	}
	return c, nil
}

// buildChart draws one bar per day, stacked by task type.
func (c *calendarModel) buildChart() {
	chartWidth := c.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if c.height > 30 {
		chartHeight = 14
	}

	c.chart = barchart.New(chartWidth, chartHeight)

	from, to := c.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		counts := make(map[string]float64)
		var order []string
		for _, t := range c.upcoming {
			if !t.Deadline.Equal(d) {
				continue
			}
			if _, seen := counts[t.Type]; !seen {
				order = append(order, t.Type)
			}
			counts[t.Type]++
		}

		var values []barchart.BarValue
		for _, typ := range order {
			values = append(values, barchart.BarValue{
				Name:  typ,
				Value: counts[typ],
				Style: lipgloss.NewStyle().Foreground(typeColor(c.profile, typ)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("02"),
			Values: values,
		})
	}

	c.chart.PushAll(bars)
	c.chart.Draw()
}

func (c calendarModel) view() string {
	w := c.width - 4

	from, to := c.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(fmt.Sprintf("%s Calendar View", c.profile)), "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: previous/next two weeks")

	if len(c.upcoming) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				header, "", mutedStyle.Render("  No deadlines in this period."), "", nav,
			),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", c.chart.View(), "", c.renderLegend(), "", c.renderList(), "", nav,
		),
	)
}

func (c calendarModel) renderLegend() string {
	seen := make(map[string]bool)
	var items []string
	for _, t := range c.upcoming {
		if seen[t.Type] {
			continue
		}
		seen[t.Type] = true
		dot := lipgloss.NewStyle().Foreground(typeColor(c.profile, t.Type)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, t.Type))
	}
	return "  " + strings.Join(items, "  ")
}

func (c calendarModel) renderList() string {
	now := c.now()
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s   %-24s %-16s %s", "Deadline", "Title", "Subject/Project", "Notes")))
	for _, t := range c.upcoming {
		dot := lipgloss.NewStyle().Foreground(typeColor(c.profile, t.Type)).Render("●")
		notes := strings.ReplaceAll(t.Notes, "\n", " ")
		rows = append(rows, fmt.Sprintf("  %s %s %-24s %-16s %s",
			deadlineStyle(t, now).Render(t.Deadline.Format("Mon Jan 02")),
			dot, truncate(t.Title, 24), truncate(t.Subject, 16), mutedStyle.Render(truncate(notes, 30)),
		))
	}
	return strings.Join(rows, "\n")
}
