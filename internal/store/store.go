package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUnknownTable = errors.New("unknown table")

// Store loads and rewrites whole tables. A table that does not exist yet loads as
// empty. Save replaces the entire table.
type Store interface {
	LoadTasks(t Table) ([]Task, error)
	SaveTasks(t Table, tasks []Task) error
	LoadSchedules() ([]Schedule, error)
	SaveSchedules(schedules []Schedule) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the store for the named backend rooted at dir.
func Open(backend, dir string, log *zap.Logger) (Store, error) {
	switch backend {
	case BackendCSV, "":
		return NewCSV(dir, log)
	case BackendSQLite:
		return New(filepath.Join(dir, "tasktrack.db"), log)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func checkTaskTable(t Table) error {
	if t != TableTasks && t != TableCompleted {
		return fmt.Errorf("%w: %q", ErrUnknownTable, t)
	}
	return nil
}

var dateLayouts = []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339}

// ParseDate reads a stored deadline. Unparseable values return the zero time and
// false; callers keep the rest of the row.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// legacyID derives a stable id for a row persisted without one.
func legacyID(t Table, index int, fields []string) uuid.UUID {
	name := string(t) + "\x00" + strconv.Itoa(index) + "\x00" + strings.Join(fields, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}

// DefaultDataDir returns ~/.config/tasktrack
func DefaultDataDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tasktrack"), nil
}
