package history

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"tableflip.dev/daybook/pkg/daystore"
)

// Manager coordinates one day's undo/redo stacks: merging, optimistic
// application, persistence, and rollback on persistence failure. At most one
// command-affecting operation may be in flight per manager; re-entrant calls
// fail with ErrBusy rather than queueing. Managers for different date keys
// are independent.
type Manager struct {
	mu          sync.Mutex
	dateKey     string
	undo        []Command
	redo        []Command
	isExecuting bool

	store     Store
	p         daystore.Persistence
	logger    *log.Logger
	listeners map[int]func()
	nextID    int
}

// NewManager creates a manager for the given date key and hydrates its
// stacks from the store. Hydration is tolerant: entries that no longer
// deserialize are dropped and logged, never failing the whole load.
func NewManager(dateKey string, store Store, p daystore.Persistence, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	m := &Manager{
		dateKey:   dateKey,
		store:     store,
		p:         p,
		logger:    logger,
		listeners: make(map[int]func()),
	}
	m.hydrate(CurrentConfig())
	return m
}

// begin claims the single in-flight slot, failing fast when it is taken.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isExecuting {
		return ErrBusy
	}
	m.isExecuting = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.isExecuting = false
	m.mu.Unlock()
}

// ExecuteCommand runs cmd through the engine: merge with the stack top when
// possible, apply the forward mutation, persist the stacks, and roll the
// mutation back if persistence fails.
func (m *Manager) ExecuteCommand(ctx context.Context, cmd Command) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	cfg := CurrentConfig()

	// Try to fuse with the top of the undo stack so a burst of small edits
	// becomes a single undo step.
	effective := cmd
	var (
		merged  bool
		prevTop Command
	)
	m.mu.Lock()
	if len(m.undo) > 0 {
		if mg, ok := cmd.(Merger); ok {
			if rep, ok := mg.Merge(m.undo[len(m.undo)-1]); ok {
				prevTop = m.undo[len(m.undo)-1]
				effective = rep
				merged = true
			}
		}
	}
	m.mu.Unlock()

	var (
		evicted     []Command
		clearedRedo []Command
	)
	book := func() {
		m.mu.Lock()
		if merged {
			m.undo[len(m.undo)-1] = effective
		} else {
			m.undo = append(m.undo, effective)
			clearedRedo = m.redo
			m.redo = nil
			for len(m.undo) > cfg.MaxHistorySize {
				evicted = append(evicted, m.undo[0])
				m.undo = m.undo[1:]
			}
		}
		m.mu.Unlock()
	}
	unbook := func() {
		m.mu.Lock()
		if merged {
			m.undo[len(m.undo)-1] = prevTop
		} else {
			m.undo = m.undo[:len(m.undo)-1]
			if len(evicted) > 0 {
				m.undo = append(append([]Command(nil), evicted...), m.undo...)
			}
			m.redo = clearedRedo
		}
		m.mu.Unlock()
	}

	// Compensates the applied mutation after a persistence failure. A merged
	// command's inverse lands on the predecessor's before state, one step too
	// far back, so the predecessor is re-applied to restore the state from
	// just before this call.
	rollback := func(persistErr error) error {
		outcome := RollbackOK
		rerr := effective.Undo(ctx)
		if rerr == nil && merged {
			rerr = prevTop.Execute(ctx)
		}
		if rerr != nil {
			outcome = RollbackFailed
			m.logger.Printf("history: rollback of %s after persist failure also failed: %v", effective.Type(), rerr)
		}
		unbook()
		return &PersistenceError{Outcome: outcome, Err: persistErr, RollbackErr: rerr}
	}

	if cfg.EnableOptimisticUpdates {
		if err := effective.Execute(ctx); err != nil {
			return &ExecutionError{Op: "execute", Err: err}
		}
		book()
	} else {
		book()
		if err := effective.Execute(ctx); err != nil {
			unbook()
			return &ExecutionError{Op: "execute", Err: err}
		}
	}
	// Persist only after the mutation so the serialized entry carries the
	// state the command captured during Execute.
	if err := m.persist(cfg); err != nil {
		return rollback(err)
	}

	m.notify()
	return nil
}

// Undo reverses the most recent command. It returns false with a nil error
// when there is nothing to undo.
func (m *Manager) Undo(ctx context.Context) (bool, error) {
	return m.shift(ctx, "undo")
}

// Redo re-applies the most recently undone command. It returns false with a
// nil error when there is nothing to redo.
func (m *Manager) Redo(ctx context.Context) (bool, error) {
	return m.shift(ctx, "redo")
}

func (m *Manager) shift(ctx context.Context, op string) (bool, error) {
	if err := m.begin(); err != nil {
		return false, err
	}
	defer m.end()
	cfg := CurrentConfig()

	m.mu.Lock()
	src, dst := &m.undo, &m.redo
	if op == "redo" {
		src, dst = &m.redo, &m.undo
	}
	if len(*src) == 0 {
		m.mu.Unlock()
		return false, nil
	}
	cmd := (*src)[len(*src)-1]
	m.mu.Unlock()

	apply, revert := cmd.Undo, cmd.Execute
	if op == "redo" {
		apply, revert = cmd.Execute, cmd.Undo
	}

	move := func() {
		m.mu.Lock()
		*src = (*src)[:len(*src)-1]
		*dst = append(*dst, cmd)
		m.mu.Unlock()
	}
	unmove := func() {
		m.mu.Lock()
		*dst = (*dst)[:len(*dst)-1]
		*src = append(*src, cmd)
		m.mu.Unlock()
	}

	if cfg.EnableOptimisticUpdates {
		if err := apply(ctx); err != nil {
			return false, &ExecutionError{Op: op, Err: err}
		}
		move()
	} else {
		move()
		if err := apply(ctx); err != nil {
			unmove()
			return false, &ExecutionError{Op: op, Err: err}
		}
	}
	// Persist after the mutation: undoing a delete re-tracks the restored
	// id, and that new id has to reach the stored stacks.
	if err := m.persist(cfg); err != nil {
		outcome := RollbackOK
		var rerr error
		if rerr = revert(ctx); rerr != nil {
			outcome = RollbackFailed
			m.logger.Printf("history: rollback of %s after persist failure also failed: %v", op, rerr)
		}
		unmove()
		return false, &PersistenceError{Outcome: outcome, Err: err, RollbackErr: rerr}
	}

	m.notify()
	return true, nil
}

// ClearHistory empties both stacks and persists the empty state.
func (m *Manager) ClearHistory() error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	cfg := CurrentConfig()

	m.mu.Lock()
	prevUndo, prevRedo := m.undo, m.redo
	m.undo, m.redo = nil, nil
	m.mu.Unlock()

	if err := m.persist(cfg); err != nil {
		m.mu.Lock()
		m.undo, m.redo = prevUndo, prevRedo
		m.mu.Unlock()
		return &PersistenceError{Outcome: RollbackOK, Err: err}
	}
	m.notify()
	return nil
}

// SwitchDate flushes the current state, then re-targets the manager at a new
// date key, rehydrating its stacks from the store.
func (m *Manager) SwitchDate(newKey string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	cfg := CurrentConfig()

	if err := m.persist(cfg); err != nil {
		m.logger.Printf("history: flush %s before date switch: %v", m.DateKey(), err)
	}
	m.mu.Lock()
	m.undo, m.redo = nil, nil
	m.dateKey = newKey
	m.mu.Unlock()

	m.hydrate(cfg)
	m.notify()
	return nil
}

// persist writes the serialized stacks for the manager's date key. With
// persistence disabled it is a no-op success.
func (m *Manager) persist(cfg Config) error {
	if !cfg.EnablePersistence {
		return nil
	}
	m.mu.Lock()
	dateKey := m.dateKey
	undoS, err := serializeStack(m.undo)
	var redoS []Serialized
	if err == nil {
		redoS, err = serializeStack(m.redo)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.store.Put(&State{
		DateKey:        dateKey,
		UndoStack:      undoS,
		RedoStack:      redoS,
		MaxHistorySize: cfg.MaxHistorySize,
		LastModified:   time.Now(),
	})
}

func serializeStack(stack []Command) ([]Serialized, error) {
	out := make([]Serialized, 0, len(stack))
	for _, cmd := range stack {
		s, err := Serialize(cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// hydrate loads the persisted stacks for the manager's date key, dropping
// entries that fail to deserialize.
func (m *Manager) hydrate(cfg Config) {
	if !cfg.EnablePersistence {
		return
	}
	m.mu.Lock()
	dateKey := m.dateKey
	m.mu.Unlock()

	st, ok, err := m.store.Get(dateKey)
	if err != nil {
		m.logger.Printf("history: load %s: %v", dateKey, err)
		return
	}
	if !ok {
		return
	}
	load := func(entries []Serialized) []Command {
		cmds := make([]Command, 0, len(entries))
		for _, s := range entries {
			cmd, err := Deserialize(m.p, s)
			if err != nil {
				m.logger.Printf("history: drop %s entry %s: %v", dateKey, s.ID, err)
				continue
			}
			cmds = append(cmds, cmd)
		}
		return cmds
	}
	undo := load(st.UndoStack)
	redo := load(st.RedoStack)
	if over := len(undo) - cfg.MaxHistorySize; over > 0 {
		undo = undo[over:]
	}

	m.mu.Lock()
	m.undo, m.redo = undo, redo
	m.mu.Unlock()
}

// Subscribe registers fn to run synchronously after every state-changing
// operation. The returned function unsubscribes it.
func (m *Manager) Subscribe(fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// notify fans out to listeners. A panicking listener is logged and isolated
// so it cannot starve the others or corrupt manager state.
func (m *Manager) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Printf("history: listener panic: %v", r)
				}
			}()
			fn()
		}()
	}
}

// DateKey returns the date key this manager is bound to.
func (m *Manager) DateKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dateKey
}

// CanUndo reports whether an undo is available right now.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0 && !m.isExecuting
}

// CanRedo reports whether a redo is available right now.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0 && !m.isExecuting
}

// UndoDescription describes the command an undo would reverse.
func (m *Manager) UndoDescription() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return "", false
	}
	return m.undo[len(m.undo)-1].Description(), true
}

// RedoDescription describes the command a redo would re-apply.
func (m *Manager) RedoDescription() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return "", false
	}
	return m.redo[len(m.redo)-1].Description(), true
}

// IsExecuting reports whether an operation is currently in flight.
func (m *Manager) IsExecuting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isExecuting
}

// StackSizes returns the current undo and redo stack depths.
func (m *Manager) StackSizes() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
