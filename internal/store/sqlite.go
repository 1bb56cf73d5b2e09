package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// SQLiteStore keeps the three tables in one SQLite database. Saves still replace a
// whole table, inside a single transaction.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewSQLiteMemory creates an in-memory database for testing.
func NewSQLiteMemory() (*SQLiteStore, error) {
	return New(":memory:", nil)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *SQLiteStore) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL,
		profile    TEXT NOT NULL DEFAULT '',
		type       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		subject    TEXT NOT NULL DEFAULT '',
		deadline   TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'Pending'
	);

	CREATE TABLE IF NOT EXISTS completed_tasks (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL,
		profile    TEXT NOT NULL DEFAULT '',
		type       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		subject    TEXT NOT NULL DEFAULT '',
		deadline   TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'Completed'
	);

	CREATE TABLE IF NOT EXISTS schedules (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL,
		profile    TEXT NOT NULL DEFAULT '',
		subject    TEXT NOT NULL DEFAULT '',
		day        TEXT NOT NULL DEFAULT '',
		time       TEXT NOT NULL DEFAULT '',
		instructor TEXT NOT NULL DEFAULT '',
		room       TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_profile     ON tasks(profile);
	CREATE INDEX IF NOT EXISTS idx_completed_profile ON completed_tasks(profile);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *SQLiteStore) LoadTasks(t Table) ([]Task, error) {
	if err := checkTaskTable(t); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, profile, type, title, subject, deadline, notes, status FROM ` + string(t) + ` ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t, err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var task Task
		var id, profile, status, deadline string
		if err := rows.Scan(&id, &profile, &task.Type, &task.Title, &task.Subject, &deadline, &task.Notes, &status); err != nil {
			return nil, err
		}
		task.Profile = Profile(profile)
		task.Status = Status(status)
		task.Deadline, _ = ParseDate(deadline)
		task.ID, err = uuid.Parse(id)
		if err != nil {
			task.ID = legacyID(t, len(tasks), task.Record())
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) SaveTasks(t Table, tasks []Task) error {
	if err := checkTaskTable(t); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save %s: %w", t, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ` + string(t)); err != nil {
		return fmt.Errorf("clear %s: %w", t, err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO ` + string(t) + ` (id, profile, type, title, subject, deadline, notes, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", t, err)
	}
	defer stmt.Close()

	for _, task := range tasks {
		if _, err := stmt.Exec(
			task.ID.String(), string(task.Profile), task.Type, task.Title,
			task.Subject, task.DeadlineString(), task.Notes, string(task.Status),
		); err != nil {
			return fmt.Errorf("insert into %s: %w", t, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", t, err)
	}
	s.log.Debug("table saved", zap.String("table", string(t)), zap.Int("rows", len(tasks)))
	return nil
}

func (s *SQLiteStore) LoadSchedules() ([]Schedule, error) {
	rows, err := s.db.Query(
		`SELECT id, profile, subject, day, time, instructor, room FROM schedules ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		var sc Schedule
		var id, profile string
		if err := rows.Scan(&id, &profile, &sc.Subject, &sc.Day, &sc.Time, &sc.Instructor, &sc.Room); err != nil {
			return nil, err
		}
		sc.Profile = Profile(profile)
		sc.ID, err = uuid.Parse(id)
		if err != nil {
			sc.ID = legacyID(TableSchedules, len(schedules), sc.Record())
		}
		schedules = append(schedules, sc)
	}
	return schedules, rows.Err()
}

func (s *SQLiteStore) SaveSchedules(schedules []Schedule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save schedules: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedules`); err != nil {
		return fmt.Errorf("clear schedules: %w", err)
	}
	for _, sc := range schedules {
		if _, err := tx.Exec(
			`INSERT INTO schedules (id, profile, subject, day, time, instructor, room) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sc.ID.String(), string(sc.Profile), sc.Subject, sc.Day, sc.Time, sc.Instructor, sc.Room,
		); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedules: %w", err)
	}
	s.log.Debug("table saved", zap.String("table", string(TableSchedules)), zap.Int("rows", len(schedules)))
	return nil
}
