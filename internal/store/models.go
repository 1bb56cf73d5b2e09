package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Profile string

const (
	ProfileStudent  Profile = "Student"
	ProfileWorker   Profile = "Worker"
	ProfileTeacher  Profile = "Teacher"
	ProfileBusiness Profile = "Business"
)

// Profiles lists every profile in the order they are offered to the user.
var Profiles = []Profile{ProfileStudent, ProfileWorker, ProfileTeacher, ProfileBusiness}

// ParseProfile matches s against the known profiles, ignoring case.
func ParseProfile(s string) (Profile, bool) {
	for _, p := range Profiles {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, true
		}
	}
	return "", false
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Days a schedule entry can fall on. Sunday is not offered.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DateLayout is the on-disk format of a deadline.
const DateLayout = "2006-01-02"

type Task struct {
	ID       uuid.UUID
	Profile  Profile
	Type     string
	Title    string
	Subject  string // "Subject/Project" column
	Deadline time.Time
	Notes    string
	Status   Status
}

// HasDeadline reports whether the deadline parsed to a real date.
func (t Task) HasDeadline() bool {
	return !t.Deadline.IsZero()
}

// DeadlineString formats the deadline as an ISO date, or "" when it is unset.
func (t Task) DeadlineString() string {
	if t.Deadline.IsZero() {
		return ""
	}
	return t.Deadline.Format(DateLayout)
}

type Schedule struct {
	ID         uuid.UUID
	Profile    Profile
	Subject    string
	Day        string
	Time       string
	Instructor string
	Room       string
}

// Table names a persisted table.
type Table string

const (
	TableTasks     Table = "tasks"
	TableCompleted Table = "completed_tasks"
	TableSchedules Table = "schedules"
)

// TaskColumns is the public column schema of the tasks and completed_tasks tables.
var TaskColumns = []string{"Profile", "Type", "Title", "Subject/Project", "Deadline", "Notes", "Status"}

// ScheduleColumns is the public column schema of the schedules table.
var ScheduleColumns = []string{"Profile", "Subject", "Day", "Time", "Instructor", "Room"}

// Record renders the task in TaskColumns order.
func (t Task) Record() []string {
	return []string{
		string(t.Profile),
		t.Type,
		t.Title,
		t.Subject,
		t.DeadlineString(),
		t.Notes,
		string(t.Status),
	}
}

// Record renders the schedule entry in ScheduleColumns order.
func (s Schedule) Record() []string {
	return []string{string(s.Profile), s.Subject, s.Day, s.Time, s.Instructor, s.Room}
}
