package daystore

import (
	"context"
	"sort"
	"sync"

	"tableflip.dev/daybook/pkg/day"
)

// Memory is an in-process Persistence with no durability. It backs tests and
// sessions where no base path is usable.
type Memory struct {
	mu      sync.Mutex
	records map[string]*day.Record
}

// NewMemory creates an empty in-memory day store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*day.Record)}
}

func (m *Memory) mutate(dateKey string, fn func(r *day.Record) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[dateKey]
	if !ok {
		r = &day.Record{DateKey: dateKey}
	}
	if err := fn(r); err != nil {
		return err
	}
	m.records[dateKey] = r
	return nil
}

func (m *Memory) AddNote(_ context.Context, dateKey, content string) (*day.Note, error) {
	var created day.Note
	if err := m.mutate(dateKey, func(r *day.Record) error {
		created = *addNote(r, content)
		return nil
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (m *Memory) UpdateNote(_ context.Context, dateKey, noteID, content string) error {
	return m.mutate(dateKey, func(r *day.Record) error {
		return updateNote(r, noteID, content)
	})
}

func (m *Memory) DeleteNote(_ context.Context, dateKey, noteID string) error {
	return m.mutate(dateKey, func(r *day.Record) error {
		return deleteNote(r, noteID)
	})
}

func (m *Memory) AddChecklistItem(_ context.Context, dateKey, text string) (*day.Item, error) {
	var created day.Item
	if err := m.mutate(dateKey, func(r *day.Record) error {
		created = *addItem(r, text)
		return nil
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (m *Memory) UpdateChecklistItem(_ context.Context, dateKey, itemID string, update ItemUpdate) error {
	return m.mutate(dateKey, func(r *day.Record) error {
		return updateItem(r, itemID, update)
	})
}

func (m *Memory) DeleteChecklistItem(_ context.Context, dateKey, itemID string) error {
	return m.mutate(dateKey, func(r *day.Record) error {
		return deleteItem(r, itemID)
	})
}

func (m *Memory) ReorderChecklistItems(_ context.Context, dateKey string, orderedIDs []string) error {
	return m.mutate(dateKey, func(r *day.Record) error {
		return reorderItems(r, orderedIDs)
	})
}

func (m *Memory) GetDayData(_ context.Context, dateKey string) (*day.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[dateKey].Clone(), nil
}

func (m *Memory) Days(context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := make([]string, 0, len(m.records))
	for k := range m.records {
		days = append(days, k)
	}
	sort.Strings(days)
	return days
}

func (m *Memory) Watch(context.Context) (<-chan Event, error) {
	return nil, nil
}
