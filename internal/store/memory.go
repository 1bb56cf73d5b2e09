package store

import "sync"

// MemoryStore keeps tables in process memory. Loads return copies so callers can
// mutate freely, which matches the file-backed stores.
type MemoryStore struct {
	mu        sync.Mutex
	tasks     map[Table][]Task
	schedules []Schedule
	saves     map[Table]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[Table][]Task),
		saves: make(map[Table]int),
	}
}

func (m *MemoryStore) LoadTasks(t Table) ([]Task, error) {
	if err := checkTaskTable(t); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Task(nil), m.tasks[t]...), nil
}

func (m *MemoryStore) SaveTasks(t Table, tasks []Task) error {
	if err := checkTaskTable(t); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t] = append([]Task(nil), tasks...)
	m.saves[t]++
	return nil
}

func (m *MemoryStore) LoadSchedules() ([]Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Schedule(nil), m.schedules...), nil
}

func (m *MemoryStore) SaveSchedules(schedules []Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules = append([]Schedule(nil), schedules...)
	m.saves[TableSchedules]++
	return nil
}

// Saves reports how many times table t has been rewritten.
func (m *MemoryStore) Saves(t Table) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[t]
}

func (m *MemoryStore) Close() error { return nil }
