package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	s, err := NewCSV(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new csv store: %v", err)
	}
	return s
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteMemory()
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTasks() []Task {
	return []Task{
		{
			ID:       uuid.New(),
			Profile:  ProfileStudent,
			Type:     "Assignment",
			Title:    "Essay",
			Subject:  "History",
			Deadline: date(2025, 6, 1),
			Status:   StatusPending,
		},
		{
			ID:       uuid.New(),
			Profile:  ProfileWorker,
			Type:     "Meeting",
			Title:    `Sync, "weekly"`,
			Subject:  "Ops",
			Deadline: date(2025, 7, 15),
			Notes:    "bring\nslides",
			Status:   StatusPending,
		},
		{
			ID:      uuid.New(),
			Profile: ProfileTeacher,
			Type:    "Grading",
			Title:   "No deadline",
			Status:  StatusCompleted,
		},
	}
}

func sampleSchedules() []Schedule {
	return []Schedule{
		{ID: uuid.New(), Profile: ProfileStudent, Subject: "Math", Day: "Monday", Time: "8:00 AM - 9:30 AM", Instructor: "Ms. Cruz", Room: "101"},
		{ID: uuid.New(), Profile: ProfileTeacher, Subject: "Physics", Day: "Friday", Time: "1:00 PM", Instructor: "", Room: "Lab"},
	}
}

// backends returns every Store implementation for shared contract tests.
func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"csv":    newCSVStore(t),
		"sqlite": newSQLiteStore(t),
		"memory": NewMemoryStore(),
	}
}

// ============================================================
// Contract
// ============================================================

func TestLoadMissingTablesIsEmpty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, tbl := range []Table{TableTasks, TableCompleted} {
				tasks, err := s.LoadTasks(tbl)
				if err != nil {
					t.Fatalf("load %s: %v", tbl, err)
				}
				if len(tasks) != 0 {
					t.Fatalf("expected empty %s, got %d rows", tbl, len(tasks))
				}
			}
			schedules, err := s.LoadSchedules()
			if err != nil {
				t.Fatalf("load schedules: %v", err)
			}
			if len(schedules) != 0 {
				t.Fatalf("expected no schedules, got %d", len(schedules))
			}
		})
	}
}

func TestTaskRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleTasks()
			if err := s.SaveTasks(TableTasks, want); err != nil {
				t.Fatal(err)
			}
			got, err := s.LoadTasks(TableTasks)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(want) {
				t.Fatalf("loaded %d tasks, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("task %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestTablesAreIndependent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tasks := sampleTasks()
			if err := s.SaveTasks(TableCompleted, tasks[2:]); err != nil {
				t.Fatal(err)
			}
			active, _ := s.LoadTasks(TableTasks)
			if len(active) != 0 {
				t.Fatalf("saving history leaked into active table: %d rows", len(active))
			}
			history, _ := s.LoadTasks(TableCompleted)
			if len(history) != 1 || history[0].Title != "No deadline" {
				t.Fatalf("unexpected history: %+v", history)
			}
		})
	}
}

func TestSaveReplacesWholeTable(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tasks := sampleTasks()
			s.SaveTasks(TableTasks, tasks)
			if err := s.SaveTasks(TableTasks, tasks[:1]); err != nil {
				t.Fatal(err)
			}
			got, _ := s.LoadTasks(TableTasks)
			if len(got) != 1 {
				t.Fatalf("expected 1 row after rewrite, got %d", len(got))
			}
			if err := s.SaveTasks(TableTasks, nil); err != nil {
				t.Fatal(err)
			}
			got, _ = s.LoadTasks(TableTasks)
			if len(got) != 0 {
				t.Fatalf("expected empty table, got %d", len(got))
			}
		})
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleSchedules()
			if err := s.SaveSchedules(want); err != nil {
				t.Fatal(err)
			}
			got, err := s.LoadSchedules()
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(want) {
				t.Fatalf("loaded %d schedules, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("schedule %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestUnknownTable(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.LoadTasks(TableSchedules); !errors.Is(err, ErrUnknownTable) {
				t.Fatalf("expected ErrUnknownTable on load, got %v", err)
			}
			if err := s.SaveTasks(Table("bogus"), nil); !errors.Is(err, ErrUnknownTable) {
				t.Fatalf("expected ErrUnknownTable on save, got %v", err)
			}
		})
	}
}

// ============================================================
// CSV specifics
// ============================================================

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCSVHeader(t *testing.T) {
	s := newCSVStore(t)
	if err := s.SaveTasks(TableTasks, sampleTasks()[:1]); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(s.Path(TableTasks))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "Profile,Type,Title,Subject/Project,Deadline,Notes,Status,ID" {
		t.Fatalf("unexpected header %q", first)
	}
	if !strings.Contains(string(data), "Student,Assignment,Essay,History,2025-06-01,,Pending,") {
		t.Fatalf("unexpected row encoding:\n%s", data)
	}
}

func TestCSVLegacyFileWithoutID(t *testing.T) {
	s := newCSVStore(t)
	writeFile(t, s.Path(TableTasks),
		"Profile,Type,Title,Subject/Project,Deadline,Notes,Status\n"+
			"Student,Assignment,Essay,History,2025-06-01 00:00:00,,Pending\n"+
			"Worker,Task,Report,,2025-06-02,draft,Pending\n")

	first, err := s.LoadTasks(TableTasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(first))
	}
	if first[0].ID == uuid.Nil || first[0].ID == first[1].ID {
		t.Fatalf("legacy rows need distinct ids: %v %v", first[0].ID, first[1].ID)
	}
	if !first[0].Deadline.Equal(date(2025, 6, 1)) {
		t.Fatalf("pandas datetime not parsed: %v", first[0].Deadline)
	}

	second, _ := s.LoadTasks(TableTasks)
	if first[0].ID != second[0].ID {
		t.Fatal("legacy ids should be stable across loads")
	}
}

func TestCSVMalformedDateKeepsRow(t *testing.T) {
	s := newCSVStore(t)
	writeFile(t, s.Path(TableTasks),
		"Profile,Type,Title,Subject/Project,Deadline,Notes,Status\n"+
			"Student,Project,Robot,Science,not-a-date,wires,Pending\n")

	tasks, err := s.LoadTasks(TableTasks)
	if err != nil {
		t.Fatalf("malformed date should not fail the load: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tasks))
	}
	task := tasks[0]
	if task.HasDeadline() {
		t.Fatalf("deadline should be null, got %v", task.Deadline)
	}
	if task.Title != "Robot" || task.Notes != "wires" || task.Subject != "Science" {
		t.Fatalf("rest of row lost: %+v", task)
	}
}

func TestCSVColumnsMatchedByName(t *testing.T) {
	s := newCSVStore(t)
	writeFile(t, s.Path(TableTasks),
		"Title,Extra,Profile,Status\n"+
			"Essay,ignored,Student,Pending\n"+
			"Short\n")

	tasks, err := s.LoadTasks(TableTasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tasks))
	}
	if tasks[0].Profile != ProfileStudent || tasks[0].Title != "Essay" || tasks[0].Type != "" {
		t.Fatalf("unexpected row: %+v", tasks[0])
	}
	if tasks[1].Title != "Short" || tasks[1].Profile != "" {
		t.Fatalf("short row not padded: %+v", tasks[1])
	}
}

func TestCSVEmptyFile(t *testing.T) {
	s := newCSVStore(t)
	writeFile(t, s.Path(TableSchedules), "")
	schedules, err := s.LoadSchedules()
	if err != nil {
		t.Fatal(err)
	}
	if len(schedules) != 0 {
		t.Fatalf("expected no rows, got %d", len(schedules))
	}
}

func TestCSVSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewCSV(dir, nil)
	s.SaveTasks(TableTasks, sampleTasks())
	s.SaveSchedules(sampleSchedules())

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 table files, got %d", len(entries))
	}
}

func TestCSVLegacyFileWithBOM(t *testing.T) {
	s := newCSVStore(t)
	writeFile(t, s.Path(TableTasks),
		"\ufeffProfile,Type,Title,Subject/Project,Deadline,Notes,Status\n"+
			"Student,Assignment,Essay,History,2025-06-01,,Pending\n")

	tasks, err := s.LoadTasks(TableTasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tasks))
	}
	if tasks[0].Profile != ProfileStudent {
		t.Fatalf("profile = %q, want Student", tasks[0].Profile)
	}
	if got := FilterTasks(tasks, ProfileStudent); len(got) != 1 {
		t.Fatalf("profile filter returned %d rows", len(got))
	}

	if err := s.SaveTasks(TableTasks, tasks); err != nil {
		t.Fatal(err)
	}
	again, _ := s.LoadTasks(TableTasks)
	if again[0].Profile != ProfileStudent {
		t.Fatalf("profile lost on rewrite: %q", again[0].Profile)
	}
}

func TestCSVHeaderNamesTrimmed(t *testing.T) {
	s := newCSVStore(t)
	writeFile(t, s.Path(TableSchedules),
		"Profile , Subject,Day\n"+
			"Teacher,Algebra,Friday\n")

	schedules, err := s.LoadSchedules()
	if err != nil {
		t.Fatal(err)
	}
	if len(schedules) != 1 || schedules[0].Profile != ProfileTeacher || schedules[0].Subject != "Algebra" {
		t.Fatalf("unexpected schedules %+v", schedules)
	}
}

// encoding/csv reads a quoted CRLF inside a field back as LF.
func TestCSVNotesLineEndingsCanonicalized(t *testing.T) {
	s := newCSVStore(t)
	task := sampleTasks()[0]
	task.Notes = "x\r\ny"
	if err := s.SaveTasks(TableTasks, []Task{task}); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadTasks(TableTasks)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Notes != "x\ny" {
		t.Fatalf("notes = %q, want %q", got[0].Notes, "x\ny")
	}
}

func TestNewCSVCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewCSV(dir, nil); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("data dir not created: %v", err)
	}
}

// ============================================================
// SQLite specifics
// ============================================================

func TestSQLiteNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "tasktrack.db")
	s, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveTasks(TableTasks, sampleTasks())
	s.Close()

	// Reopen: data survives and migration is not re-run.
	s2, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	tasks, _ := s2.LoadTasks(TableTasks)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 persisted tasks, got %d", len(tasks))
	}
}

func TestSQLiteMigrationIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-06-01", date(2025, 6, 1), true},
		{" 2025-06-01 ", date(2025, 6, 1), true},
		{"2025-06-01 00:00:00", date(2025, 6, 1), true},
		{"2025-06-01T10:30:00Z", date(2025, 6, 1), true},
		{"", time.Time{}, false},
		{"NaT", time.Time{}, false},
		{"06/01/2025", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFilterTasksPreservesOrder(t *testing.T) {
	tasks := []Task{
		{Title: "a", Profile: ProfileStudent},
		{Title: "b", Profile: ProfileWorker},
		{Title: "c", Profile: ProfileStudent},
	}
	got := FilterTasks(tasks, ProfileStudent)
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "c" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if len(FilterTasks(tasks, ProfileBusiness)) != 0 {
		t.Fatal("expected no business tasks")
	}
}

func TestFilterSchedules(t *testing.T) {
	got := FilterSchedules(sampleSchedules(), ProfileTeacher)
	if len(got) != 1 || got[0].Subject != "Physics" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestParseProfile(t *testing.T) {
	if p, ok := ParseProfile("student"); !ok || p != ProfileStudent {
		t.Fatalf("ParseProfile(student) = %q, %v", p, ok)
	}
	if p, ok := ParseProfile(" BUSINESS "); !ok || p != ProfileBusiness {
		t.Fatalf("ParseProfile(BUSINESS) = %q, %v", p, ok)
	}
	if _, ok := ParseProfile("Pirate"); ok {
		t.Fatal("unknown profile accepted")
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	for _, b := range []string{BackendCSV, BackendSQLite, BackendMemory, ""} {
		s, err := Open(b, dir, nil)
		if err != nil {
			t.Fatalf("open %q: %v", b, err)
		}
		s.Close()
	}
	if _, err := Open("postgres", dir, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	m := NewMemoryStore()
	m.SaveTasks(TableTasks, sampleTasks())
	got, _ := m.LoadTasks(TableTasks)
	got[0].Title = "mutated"
	again, _ := m.LoadTasks(TableTasks)
	if again[0].Title != "Essay" {
		t.Fatal("load should return a copy")
	}
	if m.Saves(TableTasks) != 1 {
		t.Fatalf("expected 1 save, got %d", m.Saves(TableTasks))
	}
}
