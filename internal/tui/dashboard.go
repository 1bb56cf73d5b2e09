package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
)

type dashboardModel struct {
	tracker *tasks.Tracker
	profile store.Profile
	now     func() time.Time
	width   int
	height  int

	active []store.Task
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formType     *string
	formTitle    *string
	formSubject  *string
	formDeadline *string
	formNotes    *string
}

func newDashboardModel(tr *tasks.Tracker, profile store.Profile) dashboardModel {
	typ, title, subject, deadline, notes := "", "", "", "", ""
	return dashboardModel{
		tracker:      tr,
		profile:      profile,
		now:          time.Now,
		formType:     &typ,
		formTitle:    &title,
		formSubject:  &subject,
		formDeadline: &deadline,
		formNotes:    &notes,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	profile store.Profile
	active  []store.Task
	err     error
}

func (d dashboardModel) loadData() tea.Cmd {
	tr, profile := d.tracker, d.profile
	return func() tea.Msg {
		active, err := tr.ListActive(profile)
		return dashboardDataMsg{profile: profile, active: active, err: err}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.profile != d.profile {
			return d, nil
		}
		if msg.err != nil {
			return d, errorStatus("Load error", msg.err)
		}
		d.active = msg.active
		if d.cursor >= len(d.active) {
			d.cursor = max(0, len(d.active)-1)
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.active)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.New):
			return d.showNewTaskForm()
		case key.Matches(msg, keys.Complete), key.Matches(msg, keys.Enter):
			return d.completeSelected()
		}
	}
	return d, nil
}

// selected returns the pending task under the cursor.
func (d dashboardModel) selected() (store.Task, bool) {
	if d.cursor >= len(d.active) {
		return store.Task{}, false
	}
	t := d.active[d.cursor]
	return t, t.Status == store.StatusPending
}

func (d dashboardModel) completeSelected() (dashboardModel, tea.Cmd) {
	task, ok := d.selected()
	if !ok {
		return d, warnStatus("Please select a task to complete.")
	}
	done, err := d.tracker.MarkCompletedByID(task.ID)
	if errors.Is(err, tasks.ErrNothingSelected) {
		// The table changed underneath us; reload and let the user pick again.
		return d, tea.Batch(d.loadData(), warnStatus("Please select a task to complete."))
	}
	if err != nil {
		return d, errorStatus("Complete error", err)
	}

	text := fmt.Sprintf("'%s' marked completed and moved to history!", done.Title)
	if d.tracker.Policy() == tasks.PolicyInPlace {
		text = fmt.Sprintf("'%s' marked completed!", done.Title)
	}
	return d, tea.Batch(d.loadData(), func() tea.Msg { return statusMsg{text: text} })
}

func (d dashboardModel) showNewTaskForm() (dashboardModel, tea.Cmd) {
	types := tasks.AllowedTypes(d.profile)
	*d.formType = ""
	if len(types) > 0 {
		*d.formType = types[0]
	}
	*d.formTitle = ""
	*d.formSubject = ""
	*d.formDeadline = today(d.now()).Format(store.DateLayout)
	*d.formNotes = ""

	typeOptions := make([]huh.Option[string], len(types))
	for i, t := range types {
		typeOptions[i] = huh.NewOption(t, t)
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Task Type").Options(typeOptions...).Value(d.formType),
			huh.NewInput().Title("Title").Value(d.formTitle),
			huh.NewInput().Title("Subject/Project").Value(d.formSubject),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Value(d.formDeadline).Validate(d.validateDeadline),
			huh.NewText().Title("Notes (optional)").Value(d.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) validateDeadline(s string) error {
	deadline, err := tasks.ParseDeadline(s)
	if err != nil {
		return err
	}
	return tasks.ValidateDeadline(deadline, d.now())
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.form = nil
		return d.saveTask()
	}

	return d, cmd
}

// saveTask adds the task described by the form fields.
func (d dashboardModel) saveTask() (dashboardModel, tea.Cmd) {
	if err := d.validateDeadline(*d.formDeadline); err != nil {
		return d, warnStatus(fmt.Sprintf("Task not added: %v", err))
	}
	if err := tasks.ValidateType(d.profile, *d.formType); err != nil {
		return d, warnStatus(fmt.Sprintf("Task not added: %v", err))
	}
	deadline, _ := tasks.ParseDeadline(*d.formDeadline)

	task, err := d.tracker.AddTask(tasks.NewTask{
		Profile:  d.profile,
		Type:     *d.formType,
		Title:    *d.formTitle,
		Subject:  *d.formSubject,
		Deadline: deadline,
		Notes:    *d.formNotes,
	})
	if err != nil {
		return d, errorStatus("Add error", err)
	}
	text := fmt.Sprintf("%s '%s' added under %s profile!", task.Type, task.Title, task.Profile)
	return d, tea.Batch(d.loadData(), func() tea.Msg { return statusMsg{text: text} })
}

func (d dashboardModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render(fmt.Sprintf("Add New Task (%s)", d.profile))
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View()),
		)
	}

	title := titleStyle.Render("Active Tasks")
	count := highlightStyle.Render(fmt.Sprintf("%d", len(d.active)))
	header := fmt.Sprintf("%s  %s", title, count)

	if len(d.active) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No active tasks right now. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := d.now()
	var rows []string
	rows = append(rows, header, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-2s %-12s %-24s %-16s %-11s %s", "", "Type", "Title", "Subject/Project", "Deadline", "Due")))

	for i, t := range d.active {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(typeColor(d.profile, t.Type)).Render("●")
		line := style.Render(fmt.Sprintf("%s%s %-12s %-24s %-16s %-11s",
			cursor, dot, truncate(t.Type, 12), truncate(t.Title, 24), truncate(t.Subject, 16), t.DeadlineString()))
		due := deadlineStyle(t, now).Render(relativeDeadline(t, now))
		rows = append(rows, line+" "+due)
		if i == d.cursor && t.Notes != "" {
			rows = append(rows, mutedStyle.Render("     "+truncate(strings.ReplaceAll(t.Notes, "\n", " "), max(10, w-10))))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new task  c/enter: mark completed  ↑/↓: select"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func warnStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

func errorStatus(prefix string, err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true} }
}
