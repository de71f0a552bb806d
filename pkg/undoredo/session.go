// Package undoredo binds the history engine to "the currently selected day"
// and exposes the reactive surface UIs consume: execute/undo/redo, stack
// status, human-readable descriptions, and keyboard wiring.
package undoredo

import (
	"context"
	"log"
	"os"
	"sync"

	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
)

// maxManagers bounds how many per-day managers a session keeps warm. Every
// manager persists after each operation, so evicting one loses nothing; it
// is rehydrated from the store on the next access.
const maxManagers = 8

// Session owns one history.Manager per date key, created on first access and
// dropped least-recently-used. One date is "active" at a time; the status
// accessors and Undo/Redo act on it, while ExecuteCommand routes each
// command to the manager for the command's own date key, so operations on
// different days stay independent.
type Session struct {
	mu       sync.Mutex
	p        daystore.Persistence
	store    history.Store
	logger   *log.Logger
	active   string
	managers map[string]*history.Manager
	unsubs   map[string]func()
	order    []string // access order, oldest first

	listeners map[int]func()
	nextID    int
}

// NewSession creates a session with the given day initially active.
func NewSession(p daystore.Persistence, store history.Store, dateKey string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Session{
		p:         p,
		store:     store,
		logger:    logger,
		active:    dateKey,
		managers:  make(map[string]*history.Manager),
		unsubs:    make(map[string]func()),
		listeners: make(map[int]func()),
	}
}

// manager returns the manager for dateKey, creating and hydrating it on
// first access and evicting the least recently used one beyond the cap.
func (s *Session) manager(dateKey string) *history.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.managerLocked(dateKey)
}

func (s *Session) managerLocked(dateKey string) *history.Manager {
	if m, ok := s.managers[dateKey]; ok {
		s.touch(dateKey)
		return m
	}
	m := history.NewManager(dateKey, s.store, s.p, s.logger)
	s.managers[dateKey] = m
	s.unsubs[dateKey] = m.Subscribe(s.notify)
	s.order = append(s.order, dateKey)

	for len(s.order) > maxManagers {
		oldest := s.order[0]
		if oldest == s.active {
			// Keep the active day warm; evict the next oldest instead.
			if len(s.order) < 2 {
				break
			}
			s.order[0], s.order[1] = s.order[1], s.order[0]
			oldest = s.order[0]
		}
		s.order = s.order[1:]
		if unsub := s.unsubs[oldest]; unsub != nil {
			unsub()
		}
		delete(s.unsubs, oldest)
		delete(s.managers, oldest)
	}
	return m
}

func (s *Session) touch(dateKey string) {
	for i, k := range s.order {
		if k == dateKey {
			s.order = append(append(s.order[:i:i], s.order[i+1:]...), dateKey)
			return
		}
	}
}

func (s *Session) activeManager() *history.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.managerLocked(s.active)
}

// SetDate switches the active day. The previous day's manager stays cached
// (its state is already persisted) until evicted.
func (s *Session) SetDate(dateKey string) {
	s.mu.Lock()
	changed := s.active != dateKey
	s.active = dateKey
	s.managerLocked(dateKey)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// DateKey returns the active date key.
func (s *Session) DateKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ExecuteCommand routes cmd to the manager for the command's date key.
func (s *Session) ExecuteCommand(ctx context.Context, cmd history.Command) error {
	return s.manager(cmd.DateKey()).ExecuteCommand(ctx, cmd)
}

// Undo reverses the most recent command on the active day.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	return s.activeManager().Undo(ctx)
}

// Redo re-applies the most recently undone command on the active day.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	return s.activeManager().Redo(ctx)
}

// ClearHistory drops the active day's undo/redo history.
func (s *Session) ClearHistory() error {
	return s.activeManager().ClearHistory()
}

// CanUndo reports whether the active day has something to undo and no
// operation in flight.
func (s *Session) CanUndo() bool { return s.activeManager().CanUndo() }

// CanRedo reports whether the active day has something to redo and no
// operation in flight.
func (s *Session) CanRedo() bool { return s.activeManager().CanRedo() }

// UndoDescription describes the next undo step on the active day.
func (s *Session) UndoDescription() (string, bool) { return s.activeManager().UndoDescription() }

// RedoDescription describes the next redo step on the active day.
func (s *Session) RedoDescription() (string, bool) { return s.activeManager().RedoDescription() }

// IsExecuting reports whether the active day has an operation in flight.
func (s *Session) IsExecuting() bool { return s.activeManager().IsExecuting() }

// StackSizes returns the active day's stack depths.
func (s *Session) StackSizes() (undo, redo int) { return s.activeManager().StackSizes() }

// Subscribe registers fn to run after any state change on any cached day,
// including date switches. The returned function unsubscribes it.
func (s *Session) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Printf("undoredo: listener panic: %v", r)
				}
			}()
			fn()
		}()
	}
}
