package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktrack/internal/export"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
	"go.uber.org/zap"
)

// Options configures the root model.
type Options struct {
	Profile   store.Profile
	ExportDir string
	Logger    *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	tracker   *tasks.Tracker
	profile   store.Profile
	exportDir string
	log       *zap.Logger
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	profilePicking bool
	profileForm    *huh.Form
	profileChoice  *store.Profile

	dashboard dashboardModel
	calendar  calendarModel
	schedule  scheduleModel
	history   historyModel

	help    help.Model
	status  string
	isError bool
}

func NewApp(tr *tasks.Tracker, opts Options) App {
	h := help.New()
	h.ShowAll = false

	profile := opts.Profile
	if profile == "" {
		profile = store.ProfileStudent
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	choice := profile

	return App{
		tracker:       tr,
		profile:       profile,
		exportDir:     opts.ExportDir,
		log:           log,
		activeView:    viewDashboard,
		profileChoice: &choice,
		dashboard:     newDashboardModel(tr, profile),
		calendar:      newCalendarModel(tr, profile),
		schedule:      newScheduleModel(tr, profile),
		history:       newHistoryModel(tr, profile),
		help:          h,
	}
}

func (a App) Init() tea.Cmd {
	return a.dashboard.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.schedule.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		return a, a.refreshCurrentView()

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.profilePicking {
			return a.updateProfilePicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Profile):
			return a.showProfilePicker()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCalendar
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSchedule
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewHistory
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case statusMsg:
		a.status = msg.text
		a.isError = msg.isError
		if msg.isError {
			a.log.Warn("status", zap.String("text", msg.text))
		}
		return a, nil

	case profileChangedMsg:
		a.setProfile(msg.profile)
		a.status = fmt.Sprintf("Switched to %s profile", msg.profile)
		a.isError = false
		return a, a.refreshCurrentView()

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isError = false
		a.exportPicking = false
		return a, nil

	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd
	case calendarDataMsg:
		var cmd tea.Cmd
		a.calendar, cmd = a.calendar.update(msg)
		return a, cmd
	case scheduleDataMsg:
		var cmd tea.Cmd
		a.schedule, cmd = a.schedule.update(msg)
		return a, cmd
	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd
	}

	if a.profilePicking {
		return a.updateProfilePicker(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewSchedule:
		a.schedule, cmd = a.schedule.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive
	case viewSchedule:
		return a.schedule.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewCalendar:
		return a.calendar.refresh()
	case viewSchedule:
		return a.schedule.refresh()
	case viewHistory:
		return a.history.refresh()
	}
	return nil
}

// setProfile points every view at profile. Views drop in-flight data for the old one.
func (a *App) setProfile(p store.Profile) {
	a.profile = p
	a.dashboard.profile = p
	a.dashboard.cursor = 0
	a.dashboard.active = nil
	a.calendar.profile = p
	a.calendar.offset = 0
	a.calendar.upcoming = nil
	a.schedule.profile = p
	a.schedule.week = nil
	a.history.profile = p
	a.history.cursor = 0
	a.history.completed = nil
}

func (a App) showProfilePicker() (tea.Model, tea.Cmd) {
	*a.profileChoice = a.profile

	options := make([]huh.Option[store.Profile], len(store.Profiles))
	for i, p := range store.Profiles {
		options[i] = huh.NewOption(string(p), p)
	}
	a.profileForm = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[store.Profile]().Title("Select Your Profile").Options(options...).Value(a.profileChoice),
		),
	).WithShowHelp(true)

	a.profilePicking = true
	return a, a.profileForm.Init()
}

func (a App) updateProfilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.profilePicking = false
			a.profileForm = nil
			return a, nil
		}
	}

	form, cmd := a.profileForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.profileForm = f
	}

	if a.profileForm.State == huh.StateCompleted {
		a.profilePicking = false
		a.profileForm = nil
		p := *a.profileChoice
		return a, func() tea.Msg { return profileChangedMsg{profile: p} }
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewSchedule:
		content = a.schedule.view()
	case viewHistory:
		content = a.history.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}
	if a.profilePicking && a.profileForm != nil {
		content = activePanelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("User Profile"), "", a.profileForm.View()),
		)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tasktrack")
	badge := profileStyle.Render(string(a.profile))
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, title, " ", badge)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isError {
			style = warningStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render(fmt.Sprintf("Download My Tasks (%s)", a.profile))
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the profile's rows of the active table into the export directory.
func (a App) doExport(format int) tea.Cmd {
	tr, profile, dir, log := a.tracker, a.profile, a.exportDir, a.log
	return func() tea.Msg {
		rows, err := tr.ListAll(profile)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		var path string
		if format == 0 {
			path = filepath.Join(dir, export.Filename(profile, "csv"))
			if err := export.ToCSV(rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, export.Filename(profile, "json"))
			if err := export.ToJSON(rows, profile, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		log.Info("tasks exported", zap.String("profile", string(profile)), zap.String("path", path), zap.Int("rows", len(rows)))
		return exportDoneMsg{path: path}
	}
}
