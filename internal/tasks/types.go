package tasks

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sadopc/tasktrack/internal/store"
)

var (
	ErrUnknownType  = errors.New("task type not offered for profile")
	ErrPastDeadline = errors.New("deadline is in the past")
	ErrBadDeadline  = errors.New("deadline must be YYYY-MM-DD")
	ErrUnknownDay   = errors.New("unknown day")
)

var allowedTypes = map[store.Profile][]string{
	store.ProfileStudent:  {"Assignment", "Project", "Activity"},
	store.ProfileWorker:   {"Task", "Deadline", "Meeting"},
	store.ProfileTeacher:  {"Lesson", "Grading", "Admin Work"},
	store.ProfileBusiness: {"Order", "Deliverable", "Appointment"},
}

// AllowedTypes returns the task types offered when adding a task under profile.
// Stored tasks are never checked against it again.
func AllowedTypes(profile store.Profile) []string {
	return slices.Clone(allowedTypes[profile])
}

func ValidateType(profile store.Profile, typ string) error {
	if !slices.Contains(allowedTypes[profile], typ) {
		return fmt.Errorf("%w: %q for %s", ErrUnknownType, typ, profile)
	}
	return nil
}

// ParseDeadline reads a date typed into a form.
func ParseDeadline(s string) (time.Time, error) {
	d, err := time.Parse(store.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrBadDeadline
	}
	return d, nil
}

// ValidateDeadline rejects deadlines before today's date. Time of day is ignored.
func ValidateDeadline(deadline, today time.Time) error {
	d := truncateDay(deadline)
	if d.Before(truncateDay(today)) {
		return fmt.Errorf("%w: %s", ErrPastDeadline, d.Format(store.DateLayout))
	}
	return nil
}

func ValidateDay(day string) error {
	if !slices.Contains(store.Days, day) {
		return fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
