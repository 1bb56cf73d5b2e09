package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	idColumn = "ID"
	// tableMode applies to newly created table files. Existing files keep their mode.
	tableMode = 0o644
	bom       = "\ufeff"
)

// CSVStore keeps each table in <dir>/<table>.csv with a header row.
type CSVStore struct {
	dir string
	log *zap.Logger
}

// NewCSV creates dir if needed. Table files are created on first save.
func NewCSV(dir string, log *zap.Logger) (*CSVStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &CSVStore{dir: dir, log: log}, nil
}

func (s *CSVStore) Close() error { return nil }

// Path returns the file backing table t.
func (s *CSVStore) Path(t Table) string {
	return filepath.Join(s.dir, string(t)+".csv")
}

func (s *CSVStore) LoadTasks(t Table) ([]Task, error) {
	if err := checkTaskTable(t); err != nil {
		return nil, err
	}
	rows, err := s.readTable(t)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(rows.records))
	for i, rec := range rows.records {
		task := Task{
			Profile: Profile(rows.get(rec, "Profile")),
			Type:    rows.get(rec, "Type"),
			Title:   rows.get(rec, "Title"),
			Subject: rows.get(rec, "Subject/Project"),
			Notes:   rows.get(rec, "Notes"),
			Status:  Status(rows.get(rec, "Status")),
		}
		raw := rows.get(rec, "Deadline")
		if d, ok := ParseDate(raw); ok {
			task.Deadline = d
		} else if raw != "" {
			s.log.Debug("unparseable deadline",
				zap.String("table", string(t)), zap.Int("row", i), zap.String("value", raw))
		}
		task.ID = rows.id(t, i, rec)
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *CSVStore) SaveTasks(t Table, tasks []Task) error {
	if err := checkTaskTable(t); err != nil {
		return err
	}
	records := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, append(task.Record(), task.ID.String()))
	}
	return s.writeTable(t, append(append([]string{}, TaskColumns...), idColumn), records)
}

func (s *CSVStore) LoadSchedules() ([]Schedule, error) {
	rows, err := s.readTable(TableSchedules)
	if err != nil {
		return nil, err
	}

	schedules := make([]Schedule, 0, len(rows.records))
	for i, rec := range rows.records {
		schedules = append(schedules, Schedule{
			ID:         rows.id(TableSchedules, i, rec),
			Profile:    Profile(rows.get(rec, "Profile")),
			Subject:    rows.get(rec, "Subject"),
			Day:        rows.get(rec, "Day"),
			Time:       rows.get(rec, "Time"),
			Instructor: rows.get(rec, "Instructor"),
			Room:       rows.get(rec, "Room"),
		})
	}
	return schedules, nil
}

func (s *CSVStore) SaveSchedules(schedules []Schedule) error {
	records := make([][]string, 0, len(schedules))
	for _, sc := range schedules {
		records = append(records, append(sc.Record(), sc.ID.String()))
	}
	return s.writeTable(TableSchedules, append(append([]string{}, ScheduleColumns...), idColumn), records)
}

// table is a parsed CSV file addressed by header name.
type table struct {
	columns map[string]int
	records [][]string
}

func (tb table) get(rec []string, column string) string {
	i, ok := tb.columns[column]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (tb table) id(t Table, index int, rec []string) uuid.UUID {
	if id, err := uuid.Parse(tb.get(rec, idColumn)); err == nil {
		return id
	}
	return legacyID(t, index, rec)
}

func (s *CSVStore) readTable(t Table) (table, error) {
	f, err := os.Open(s.Path(t))
	if errors.Is(err, fs.ErrNotExist) {
		return table{}, nil
	}
	if err != nil {
		return table{}, fmt.Errorf("open %s: %w", t, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var tb table
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				s.log.Warn("skipping malformed row", zap.String("table", string(t)), zap.Error(err))
				continue
			}
			return table{}, fmt.Errorf("read %s: %w", t, err)
		}
		if tb.columns == nil {
			tb.columns = make(map[string]int, len(rec))
			for i, name := range rec {
				if i == 0 {
					name = strings.TrimPrefix(name, bom)
				}
				tb.columns[strings.TrimSpace(name)] = i
			}
			continue
		}
		tb.records = append(tb.records, rec)
	}
	return tb, nil
}

// writeTable replaces the table file by renaming a fully written temp file over it.
func (s *CSVStore) writeTable(t Table, header []string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", t, err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", t, err)
	}

	err := renameio.WriteFile(s.Path(t), buf.Bytes(), tableMode, renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("replace %s: %w", t, err)
	}
	s.log.Debug("table saved", zap.String("table", string(t)), zap.Int("rows", len(records)))
	return nil
}
