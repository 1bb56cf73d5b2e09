package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
)

type scheduleModel struct {
	tracker *tasks.Tracker
	profile store.Profile
	width   int
	height  int

	week []tasks.DaySchedule

	formActive bool
	form       *huh.Form

	formSubject    *string
	formDay        *string
	formTime       *string
	formInstructor *string
	formRoom       *string
}

func newScheduleModel(tr *tasks.Tracker, profile store.Profile) scheduleModel {
	subject, day, tm, instructor, room := "", store.Days[0], "", "", ""
	return scheduleModel{
		tracker:        tr,
		profile:        profile,
		formSubject:    &subject,
		formDay:        &day,
		formTime:       &tm,
		formInstructor: &instructor,
		formRoom:       &room,
	}
}

func (s *scheduleModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type scheduleDataMsg struct {
	profile store.Profile
	week    []tasks.DaySchedule
	err     error
}

func (s scheduleModel) refresh() tea.Cmd {
	tr, profile := s.tracker, s.profile
	return func() tea.Msg {
		week, err := tr.WeeklySchedule(profile)
		return scheduleDataMsg{profile: profile, week: week, err: err}
	}
}

func (s scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case scheduleDataMsg:
		if msg.profile != s.profile {
			return s, nil
		}
		if msg.err != nil {
			return s, errorStatus("Load error", msg.err)
		}
		s.week = msg.week
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.New) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s scheduleModel) showForm() (scheduleModel, tea.Cmd) {
	*s.formSubject = ""
	*s.formDay = store.Days[0]
	*s.formTime = ""
	*s.formInstructor = ""
	*s.formRoom = ""

	dayOptions := make([]huh.Option[string], len(store.Days))
	for i, d := range store.Days {
		dayOptions[i] = huh.NewOption(d, d)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subject Name").Value(s.formSubject),
			huh.NewSelect[string]().Title("Day").Options(dayOptions...).Value(s.formDay),
			huh.NewInput().Title("Time (e.g., 8:00 AM - 9:30 AM)").Value(s.formTime),
			huh.NewInput().Title("Instructor Name").Value(s.formInstructor),
			huh.NewInput().Title("Room / Location").Value(s.formRoom),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s scheduleModel) updateForm(msg tea.Msg) (scheduleModel, tea.Cmd) {
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
		s.form = nil
		return s.saveSchedule()
	}

	return s, cmd
}

func (s scheduleModel) saveSchedule() (scheduleModel, tea.Cmd) {
	if err := tasks.ValidateDay(*s.formDay); err != nil {
		return s, warnStatus(fmt.Sprintf("Schedule not added: %v", err))
	}
	sc, err := s.tracker.AddSchedule(tasks.NewSchedule{
		Profile:    s.profile,
		Subject:    *s.formSubject,
		Day:        *s.formDay,
		Time:       *s.formTime,
		Instructor: *s.formInstructor,
		Room:       *s.formRoom,
	})
	if err != nil {
		return s, errorStatus("Add error", err)
	}
	text := fmt.Sprintf("Added %s on %s!", sc.Subject, sc.Day)
	return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: text} })
}

func (s scheduleModel) empty() bool {
	for _, d := range s.week {
		if len(d.Entries) > 0 {
			return false
		}
	}
	return true
}

func (s scheduleModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Add New Class Schedule")
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("%s's Weekly Class Schedule", s.profile))

	if s.empty() {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No schedules added yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, d := range s.week {
		rows = append(rows, "", highlightStyle.Render(d.Day))
		if len(d.Entries) == 0 {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  No class scheduled on %s.", d.Day)))
			continue
		}
		for _, e := range d.Entries {
			rows = append(rows, fmt.Sprintf("  %-20s %-20s %-18s %s",
				truncate(e.Subject, 20), truncate(e.Time, 20), truncate(e.Instructor, 18), e.Room))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add class"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
