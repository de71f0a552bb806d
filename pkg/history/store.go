package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// State is the persisted unit: one serialized undo/redo pair per date key.
type State struct {
	DateKey        string       `json:"dateKey"`
	UndoStack      []Serialized `json:"undoStack"`
	RedoStack      []Serialized `json:"redoStack"`
	MaxHistorySize int          `json:"maxHistorySize"`
	LastModified   time.Time    `json:"lastModified"`
}

// Store persists history state per date key. Put failures must surface to
// the caller; the manager decides whether to roll back an optimistic
// mutation based on them.
type Store interface {
	Get(dateKey string) (*State, bool, error)
	Put(state *State) error
	Delete(dateKey string) error
}

const historyDir = "history"

// OpenStore returns a diskv-backed Store rooted at basePath. If the base
// path cannot be prepared the store degrades permanently to an in-memory map
// for the session; the degradation is logged once, never retried.
func OpenStore(basePath string, logger *log.Logger) Store {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Printf("history: store unavailable (%v); falling back to in-memory history", err)
		return NewMemoryStore()
	}
	return &diskvStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: historyKeyTransform,
		InverseTransform:  historyPathTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

type diskvStore struct {
	d *diskv.Diskv
}

func historyKeyTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 1 {
		return &diskv.PathKey{Path: []string{}, FileName: parts[0]}
	}
	return &diskv.PathKey{Path: []string{parts[0]}, FileName: parts[1]}
}

func historyPathTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

func historyKey(dateKey string) string {
	return fmt.Sprintf("%s/%s", historyDir, dateKey)
}

func (s *diskvStore) Get(dateKey string) (*State, bool, error) {
	val, err := s.d.Read(historyKey(dateKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("history: read %s: %w", dateKey, err)
	}
	st := &State{}
	if err := json.Unmarshal(val, st); err != nil {
		return nil, false, fmt.Errorf("history: decode %s: %w", dateKey, err)
	}
	return st, true, nil
}

func (s *diskvStore) Put(state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("history: encode %s: %w", state.DateKey, err)
	}
	if err := s.d.Write(historyKey(state.DateKey), data); err != nil {
		return fmt.Errorf("history: write %s: %w", state.DateKey, err)
	}
	return nil
}

func (s *diskvStore) Delete(dateKey string) error {
	err := s.d.Erase(historyKey(dateKey))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("history: erase %s: %w", dateKey, err)
	}
	return nil
}

// MemoryStore keeps history state in process memory only. It backs tests,
// sessions with persistence disabled, and the durable store's fallback path.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (s *MemoryStore) Get(dateKey string) (*State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[dateKey]
	if !ok {
		return nil, false, nil
	}
	cp := *st
	return &cp, true, nil
}

func (s *MemoryStore) Put(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *state
	s.states[state.DateKey] = &cp
	return nil
}

func (s *MemoryStore) Delete(dateKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, dateKey)
	return nil
}
