// Package tasks holds the task lifecycle: adding tasks, completing them, and the
// profile-scoped views over the active and history tables.
package tasks

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/tasktrack/internal/store"
	"go.uber.org/zap"
)

// ErrNothingSelected means no pending task matched a completion request. It is a
// warning for the user; neither table was touched.
var ErrNothingSelected = errors.New("no pending task selected")

// Policy decides what completing a task does to the tables.
type Policy string

const (
	// PolicyRelocate moves the completed row from the active table to history.
	PolicyRelocate Policy = "relocate"
	// PolicyInPlace flips Status in the active table and leaves history alone.
	PolicyInPlace Policy = "in_place"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyRelocate, "":
		return PolicyRelocate, nil
	case PolicyInPlace:
		return PolicyInPlace, nil
	}
	return "", fmt.Errorf("unknown completion policy %q", s)
}

type NewTask struct {
	Profile  store.Profile
	Type     string
	Title    string
	Subject  string
	Deadline time.Time
	Notes    string
}

// Tracker runs every operation as load, mutate, save against its store.
type Tracker struct {
	store  store.Store
	policy Policy
	log    *zap.Logger
	newID  func() uuid.UUID
}

type Option func(*Tracker)

func WithPolicy(p Policy) Option {
	return func(t *Tracker) { t.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func NewTracker(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		policy: PolicyRelocate,
		log:    zap.NewNop(),
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Policy() Policy { return t.policy }

// AddTask appends a pending task to the active table. Fields are stored as given.
func (t *Tracker) AddTask(nt NewTask) (store.Task, error) {
	active, err := t.store.LoadTasks(store.TableTasks)
	if err != nil {
		return store.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	task := store.Task{
		ID:       t.newID(),
		Profile:  nt.Profile,
		Type:     nt.Type,
		Title:    nt.Title,
		Subject:  nt.Subject,
		Deadline: nt.Deadline,
		Notes:    nt.Notes,
		Status:   store.StatusPending,
	}
	active = append(active, task)
	if err := t.store.SaveTasks(store.TableTasks, active); err != nil {
		return store.Task{}, fmt.Errorf("save tasks: %w", err)
	}
	t.log.Info("task added",
		zap.String("id", task.ID.String()),
		zap.String("profile", string(task.Profile)),
		zap.String("type", task.Type),
		zap.String("title", task.Title),
	)
	return task, nil
}

// MarkCompleted completes the first pending task titled title. An empty profile
// matches any profile. Titles are not unique; callers that know the row should use
// MarkCompletedByID.
func (t *Tracker) MarkCompleted(profile store.Profile, title string) (store.Task, error) {
	return t.complete(func(task store.Task) bool {
		return task.Title == title && (profile == "" || task.Profile == profile)
	})
}

func (t *Tracker) MarkCompletedByID(id uuid.UUID) (store.Task, error) {
	return t.complete(func(task store.Task) bool { return task.ID == id })
}

func (t *Tracker) complete(match func(store.Task) bool) (store.Task, error) {
	active, err := t.store.LoadTasks(store.TableTasks)
	if err != nil {
		return store.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	idx := slices.IndexFunc(active, func(task store.Task) bool {
		return task.Status == store.StatusPending && match(task)
	})
	if idx < 0 {
		return store.Task{}, ErrNothingSelected
	}

	done := active[idx]
	done.Status = store.StatusCompleted

	switch t.policy {
	case PolicyInPlace:
		active[idx] = done
		if err := t.store.SaveTasks(store.TableTasks, active); err != nil {
			return store.Task{}, fmt.Errorf("save tasks: %w", err)
		}
	default:
		history, err := t.store.LoadTasks(store.TableCompleted)
		if err != nil {
			return store.Task{}, fmt.Errorf("load history: %w", err)
		}
		if err := t.store.SaveTasks(store.TableCompleted, append(history, done)); err != nil {
			return store.Task{}, fmt.Errorf("save history: %w", err)
		}
		active = slices.Delete(active, idx, idx+1)
		if err := t.store.SaveTasks(store.TableTasks, active); err != nil {
			return store.Task{}, fmt.Errorf("save tasks: %w", err)
		}
	}

	t.log.Info("task completed",
		zap.String("id", done.ID.String()),
		zap.String("profile", string(done.Profile)),
		zap.String("title", done.Title),
		zap.String("policy", string(t.policy)),
	)
	return done, nil
}

// ListActive returns the profile's tasks that are not completed, in table order.
func (t *Tracker) ListActive(profile store.Profile) ([]store.Task, error) {
	all, err := t.ListAll(profile)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(task store.Task) bool {
		return task.Status == store.StatusCompleted
	}), nil
}

// ListAll returns every row of the active table for profile, whatever its status.
func (t *Tracker) ListAll(profile store.Profile) ([]store.Task, error) {
	active, err := t.store.LoadTasks(store.TableTasks)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return store.FilterTasks(active, profile), nil
}

func (t *Tracker) ListHistory(profile store.Profile) ([]store.Task, error) {
	history, err := t.store.LoadTasks(store.TableCompleted)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return store.FilterTasks(history, profile), nil
}

// PendingTitles lists the titles offered for completion.
func (t *Tracker) PendingTitles(profile store.Profile) ([]string, error) {
	active, err := t.ListActive(profile)
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, task := range active {
		if task.Status == store.StatusPending {
			titles = append(titles, task.Title)
		}
	}
	return titles, nil
}

// Upcoming returns active tasks with deadlines in [from, from+days), earliest first.
// Tasks without a parseable deadline are left out.
func (t *Tracker) Upcoming(profile store.Profile, from time.Time, days int) ([]store.Task, error) {
	active, err := t.ListActive(profile)
	if err != nil {
		return nil, err
	}
	start := truncateDay(from)
	end := start.AddDate(0, 0, days)

	var out []store.Task
	for _, task := range active {
		if !task.HasDeadline() || task.Deadline.Before(start) || !task.Deadline.Before(end) {
			continue
		}
		out = append(out, task)
	}
	slices.SortStableFunc(out, func(a, b store.Task) int {
		return a.Deadline.Compare(b.Deadline)
	})
	return out, nil
}
