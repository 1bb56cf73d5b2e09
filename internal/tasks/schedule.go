package tasks

import (
	"fmt"

	"github.com/sadopc/tasktrack/internal/store"
	"go.uber.org/zap"
)

type NewSchedule struct {
	Profile    store.Profile
	Subject    string
	Day        string
	Time       string
	Instructor string
	Room       string
}

// DaySchedule is one day block of the weekly view.
type DaySchedule struct {
	Day     string
	Entries []store.Schedule
}

// AddSchedule appends an entry to the schedules table. Duplicates are allowed.
func (t *Tracker) AddSchedule(ns NewSchedule) (store.Schedule, error) {
	schedules, err := t.store.LoadSchedules()
	if err != nil {
		return store.Schedule{}, fmt.Errorf("load schedules: %w", err)
	}
	sc := store.Schedule{
		ID:         t.newID(),
		Profile:    ns.Profile,
		Subject:    ns.Subject,
		Day:        ns.Day,
		Time:       ns.Time,
		Instructor: ns.Instructor,
		Room:       ns.Room,
	}
	if err := t.store.SaveSchedules(append(schedules, sc)); err != nil {
		return store.Schedule{}, fmt.Errorf("save schedules: %w", err)
	}
	t.log.Info("schedule added",
		zap.String("profile", string(sc.Profile)),
		zap.String("subject", sc.Subject),
		zap.String("day", sc.Day),
	)
	return sc, nil
}

func (t *Tracker) ListSchedules(profile store.Profile) ([]store.Schedule, error) {
	schedules, err := t.store.LoadSchedules()
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	return store.FilterSchedules(schedules, profile), nil
}

// WeeklySchedule groups the profile's entries by day, Monday through Saturday.
// Every day is present; entries on other days are dropped.
func (t *Tracker) WeeklySchedule(profile store.Profile) ([]DaySchedule, error) {
	schedules, err := t.ListSchedules(profile)
	if err != nil {
		return nil, err
	}
	week := make([]DaySchedule, len(store.Days))
	for i, day := range store.Days {
		week[i].Day = day
		for _, sc := range schedules {
			if sc.Day == day {
				week[i].Entries = append(week[i].Entries, sc)
			}
		}
	}
	return week, nil
}
