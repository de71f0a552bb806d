package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"testing"
	"time"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
)

const testDay = "2026-01-02"

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func withConfig(t *testing.T, cfg Config) {
	t.Helper()
	Configure(cfg)
	t.Cleanup(func() { Configure(DefaultConfig()) })
}

func newTestManager(t *testing.T) (*Manager, *daystore.Memory, *MemoryStore) {
	t.Helper()
	p := daystore.NewMemory()
	hs := NewMemoryStore()
	return NewManager(testDay, hs, p, quietLogger()), p, hs
}

func snapshot(t *testing.T, p daystore.Persistence) *day.Record {
	t.Helper()
	r, err := p.GetDayData(context.Background(), testDay)
	if err != nil {
		t.Fatalf("GetDayData() = %v", err)
	}
	if r == nil {
		r = &day.Record{DateKey: testDay}
	}
	return r
}

// equivalent compares records ignoring ids and timestamps: undo restores
// equivalent content, not identical ids.
func equivalent(a, b *day.Record) bool {
	if len(a.Notes) != len(b.Notes) || len(a.Checklist) != len(b.Checklist) {
		return false
	}
	for i := range a.Notes {
		if a.Notes[i].Content != b.Notes[i].Content {
			return false
		}
	}
	for i := range a.Checklist {
		x, y := a.Checklist[i], b.Checklist[i]
		if x.Text != y.Text || x.Completed != y.Completed || x.Order != y.Order {
			return false
		}
	}
	return true
}

func TestUndoInverseLaw(t *testing.T) {
	ctx := context.Background()

	cases := map[string]func(p daystore.Persistence, r *day.Record) Command{
		"add note": func(p daystore.Persistence, _ *day.Record) Command {
			return NewAddNote(p, testDay, "fresh")
		},
		"edit note": func(p daystore.Persistence, r *day.Record) Command {
			return NewEditNote(p, testDay, r.Notes[0].ID, "changed")
		},
		"delete note": func(p daystore.Persistence, r *day.Record) Command {
			return NewDeleteNote(p, testDay, r.Notes[0].ID)
		},
		"add item": func(p daystore.Persistence, _ *day.Record) Command {
			return NewAddItem(p, testDay, "fresh")
		},
		"edit item text": func(p daystore.Persistence, r *day.Record) Command {
			return NewEditItemText(p, testDay, r.Checklist[0].ID, "changed")
		},
		"toggle item": func(p daystore.Persistence, r *day.Record) Command {
			return NewToggleItem(p, testDay, r.Checklist[0].ID)
		},
		"delete item": func(p daystore.Persistence, r *day.Record) Command {
			return NewDeleteItem(p, testDay, r.Checklist[1].ID)
		},
		"reorder items": func(p daystore.Persistence, r *day.Record) Command {
			ids := r.ItemOrder()
			return NewReorderItems(p, testDay, []string{ids[2], ids[0], ids[1]})
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			m, p, _ := newTestManager(t)
			if _, err := p.AddNote(ctx, testDay, "seed note"); err != nil {
				t.Fatal(err)
			}
			for _, text := range []string{"one", "two", "three"} {
				if _, err := p.AddChecklistItem(ctx, testDay, text); err != nil {
					t.Fatal(err)
				}
			}

			before := snapshot(t, p)
			cmd := build(p, before)
			if err := m.ExecuteCommand(ctx, cmd); err != nil {
				t.Fatalf("ExecuteCommand() = %v", err)
			}
			after := snapshot(t, p)
			if equivalent(before, after) {
				t.Fatal("command had no observable effect")
			}

			done, err := m.Undo(ctx)
			if err != nil || !done {
				t.Fatalf("Undo() = %v, %v", done, err)
			}
			if got := snapshot(t, p); !equivalent(before, got) {
				t.Fatalf("undo mismatch:\n before = %+v\n after  = %+v", before, got)
			}

			// Redo restores the post-execute state.
			done, err = m.Redo(ctx)
			if err != nil || !done {
				t.Fatalf("Redo() = %v, %v", done, err)
			}
			if got := snapshot(t, p); !equivalent(after, got) {
				t.Fatalf("redo mismatch:\n want = %+v\n got  = %+v", after, got)
			}
		})
	}
}

func TestNewActionInvalidatesRedo(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)

	if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "c1")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if _, redo := m.StackSizes(); redo != 1 {
		t.Fatalf("redo size = %d, want 1", redo)
	}

	if err := m.ExecuteCommand(ctx, NewAddItem(p, testDay, "c2")); err != nil {
		t.Fatal(err)
	}
	if _, redo := m.StackSizes(); redo != 0 {
		t.Fatalf("redo size after new command = %d, want 0", redo)
	}
}

func TestEmptyStacksNoOp(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	if done, err := m.Undo(ctx); done || err != nil {
		t.Fatalf("Undo(empty) = %v, %v", done, err)
	}
	if done, err := m.Redo(ctx); done || err != nil {
		t.Fatalf("Redo(empty) = %v, %v", done, err)
	}
	if m.CanUndo() || m.CanRedo() {
		t.Fatal("CanUndo/CanRedo true on empty stacks")
	}
}

func TestMergeWindow(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name      string
		delta     time.Duration
		wantUndos int
	}{
		{"inside window", 200 * time.Millisecond, 1},
		{"outside window", 2 * time.Second, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, p, _ := newTestManager(t)
			n, err := p.AddNote(ctx, testDay, "original")
			if err != nil {
				t.Fatal(err)
			}

			first := NewEditNote(p, testDay, n.ID, "first edit")
			if err := m.ExecuteCommand(ctx, first); err != nil {
				t.Fatal(err)
			}
			second := NewEditNote(p, testDay, n.ID, "second edit")
			second.at = first.at.Add(tc.delta)
			if err := m.ExecuteCommand(ctx, second); err != nil {
				t.Fatal(err)
			}

			undo, _ := m.StackSizes()
			if undo != tc.wantUndos {
				t.Fatalf("undo size = %d, want %d", undo, tc.wantUndos)
			}

			// Undoing everything always restores the original content.
			for {
				done, err := m.Undo(ctx)
				if err != nil {
					t.Fatal(err)
				}
				if !done {
					break
				}
			}
			r := snapshot(t, p)
			if got := r.Note(n.ID).Content; got != "original" {
				t.Fatalf("content after full undo = %q, want %q", got, "original")
			}
		})
	}
}

func TestMergedEditUndoesWholeBurst(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)
	n, err := p.AddNote(ctx, testDay, "start")
	if err != nil {
		t.Fatal(err)
	}

	// Three edits within 200ms of each other collapse into one undo entry.
	var prev *EditNote
	for i, content := range []string{"s", "st", "sto"} {
		e := NewEditNote(p, testDay, n.ID, content)
		if prev != nil {
			e.at = prev.at.Add(time.Duration(i) * 200 * time.Millisecond)
		}
		if err := m.ExecuteCommand(ctx, e); err != nil {
			t.Fatal(err)
		}
		prev = e
	}

	if undo, _ := m.StackSizes(); undo != 1 {
		t.Fatalf("undo size = %d, want 1", undo)
	}
	if done, err := m.Undo(ctx); !done || err != nil {
		t.Fatalf("Undo() = %v, %v", done, err)
	}
	if got := snapshot(t, p).Note(n.ID).Content; got != "start" {
		t.Fatalf("content = %q, want pre-burst %q", got, "start")
	}
}

func TestMergeDoesNotCrossTargets(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)
	n1, _ := p.AddNote(ctx, testDay, "a")
	n2, _ := p.AddNote(ctx, testDay, "b")

	first := NewEditNote(p, testDay, n1.ID, "a2")
	if err := m.ExecuteCommand(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := NewEditNote(p, testDay, n2.ID, "b2")
	second.at = first.at.Add(50 * time.Millisecond)
	if err := m.ExecuteCommand(ctx, second); err != nil {
		t.Fatal(err)
	}
	if undo, _ := m.StackSizes(); undo != 2 {
		t.Fatalf("undo size = %d, want 2 (different notes must not merge)", undo)
	}
}

func TestReorderMerge(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)
	var ids []string
	for _, text := range []string{"A", "B", "C"} {
		it, err := p.AddChecklistItem(ctx, testDay, text)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, it.ID)
	}
	a, b, c := ids[0], ids[1], ids[2]

	first := NewReorderItems(p, testDay, []string{c, a, b})
	if err := m.ExecuteCommand(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := NewReorderItems(p, testDay, []string{b, c, a})
	second.at = first.at.Add(100 * time.Millisecond)
	if err := m.ExecuteCommand(ctx, second); err != nil {
		t.Fatal(err)
	}

	if undo, _ := m.StackSizes(); undo != 1 {
		t.Fatalf("undo size = %d, want 1 (reorders within window merge)", undo)
	}
	if done, err := m.Undo(ctx); !done || err != nil {
		t.Fatalf("Undo() = %v, %v", done, err)
	}
	want := []string{"A", "B", "C"}
	for i, it := range snapshot(t, p).Checklist {
		if it.Text != want[i] {
			t.Fatalf("checklist[%d] = %q, want %q", i, it.Text, want[i])
		}
	}
}

func TestStackCapacityEvictsOldest(t *testing.T) {
	withConfig(t, Config{MaxHistorySize: 5, EnablePersistence: true, EnableOptimisticUpdates: true})
	ctx := context.Background()
	m, p, _ := newTestManager(t)

	for i := 0; i < 6; i++ {
		if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, fmt.Sprintf("note %d", i))); err != nil {
			t.Fatal(err)
		}
	}
	undo, _ := m.StackSizes()
	if undo != 5 {
		t.Fatalf("undo size = %d, want 5", undo)
	}

	// Undo everything still on the stack; "note 0" was evicted and survives.
	for {
		done, err := m.Undo(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !done {
			break
		}
	}
	r := snapshot(t, p)
	if len(r.Notes) != 1 || r.Notes[0].Content != "note 0" {
		t.Fatalf("notes after exhausting undo = %+v, want only the evicted one", r.Notes)
	}
}

// failPutStore accepts reads but rejects writes, simulating durable storage
// going away mid-session.
type failPutStore struct {
	Store
	fail bool
}

func (s *failPutStore) Put(state *State) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Put(state)
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	p := daystore.NewMemory()
	fs := &failPutStore{Store: NewMemoryStore()}
	m := NewManager(testDay, fs, p, quietLogger())

	before := snapshot(t, p)
	fs.fail = true

	err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "doomed"))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("ExecuteCommand() = %v, want PersistenceError", err)
	}
	if perr.Outcome != RollbackOK {
		t.Fatalf("Outcome = %v, want RollbackOK", perr.Outcome)
	}
	if got := snapshot(t, p); !equivalent(before, got) {
		t.Fatalf("visible state changed despite rollback: %+v", got)
	}
	if undo, redo := m.StackSizes(); undo != 0 || redo != 0 {
		t.Fatalf("stacks = %d/%d, want empty", undo, redo)
	}
}

func TestPersistenceFailureRollsBackMergedEdit(t *testing.T) {
	ctx := context.Background()
	p := daystore.NewMemory()
	fs := &failPutStore{Store: NewMemoryStore()}
	m := NewManager(testDay, fs, p, quietLogger())

	n, err := p.AddNote(ctx, testDay, "base")
	if err != nil {
		t.Fatal(err)
	}
	first := NewEditNote(p, testDay, n.ID, "first")
	if err := m.ExecuteCommand(ctx, first); err != nil {
		t.Fatal(err)
	}
	fs.fail = true

	second := NewEditNote(p, testDay, n.ID, "second")
	second.at = first.at.Add(100 * time.Millisecond)
	err = m.ExecuteCommand(ctx, second)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("ExecuteCommand() = %v, want PersistenceError", err)
	}
	if perr.Outcome != RollbackOK {
		t.Fatalf("Outcome = %v, want RollbackOK", perr.Outcome)
	}

	// The failed edit merged with the stack top; rollback lands on the first
	// edit, not on the content from before it.
	if got := snapshot(t, p).Note(n.ID).Content; got != "first" {
		t.Fatalf("content after rollback = %q, want %q", got, "first")
	}

	// The restored stack top still reverses exactly the first edit.
	fs.fail = false
	if done, err := m.Undo(ctx); !done || err != nil {
		t.Fatalf("Undo() = %v, %v", done, err)
	}
	if got := snapshot(t, p).Note(n.ID).Content; got != "base" {
		t.Fatalf("content after undo = %q, want %q", got, "base")
	}
}

func TestNonOptimisticPersistsCapturedState(t *testing.T) {
	withConfig(t, Config{MaxHistorySize: 100, EnablePersistence: true, EnableOptimisticUpdates: false, MergeTimeWindow: time.Second})
	ctx := context.Background()
	p := daystore.NewMemory()
	hs := NewMemoryStore()

	m := NewManager(testDay, hs, p, quietLogger())
	if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "durable")); err != nil {
		t.Fatal(err)
	}

	// The stored entry carries the note id captured during execute, so a
	// manager hydrated from it can still undo the add.
	m2 := NewManager(testDay, hs, p, quietLogger())
	if done, err := m2.Undo(ctx); !done || err != nil {
		t.Fatalf("Undo() after hydrate = %v, %v", done, err)
	}
	if r := snapshot(t, p); len(r.Notes) != 0 {
		t.Fatalf("notes after undo = %+v, want none", r.Notes)
	}
}

func TestNonOptimisticUndoPersistsRetrackedID(t *testing.T) {
	withConfig(t, Config{MaxHistorySize: 100, EnablePersistence: true, EnableOptimisticUpdates: false, MergeTimeWindow: time.Second})
	ctx := context.Background()
	p := daystore.NewMemory()
	hs := NewMemoryStore()

	m := NewManager(testDay, hs, p, quietLogger())
	n, err := p.AddNote(ctx, testDay, "target")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ExecuteCommand(ctx, NewDeleteNote(p, testDay, n.ID)); err != nil {
		t.Fatal(err)
	}
	if done, err := m.Undo(ctx); !done || err != nil {
		t.Fatalf("Undo() = %v, %v", done, err)
	}

	// Undo re-created the note under a new id. A manager hydrated after that
	// must redo against the restored copy, not the original id.
	m2 := NewManager(testDay, hs, p, quietLogger())
	if done, err := m2.Redo(ctx); !done || err != nil {
		t.Fatalf("Redo() after hydrate = %v, %v", done, err)
	}
	if r := snapshot(t, p); len(r.Notes) != 0 {
		t.Fatalf("notes after redo = %+v, want none", r.Notes)
	}
}

func TestPersistenceFailureDuringUndo(t *testing.T) {
	ctx := context.Background()
	p := daystore.NewMemory()
	fs := &failPutStore{Store: NewMemoryStore()}
	m := NewManager(testDay, fs, p, quietLogger())

	if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "kept")); err != nil {
		t.Fatal(err)
	}
	after := snapshot(t, p)
	fs.fail = true

	done, err := m.Undo(ctx)
	var perr *PersistenceError
	if done || !errors.As(err, &perr) {
		t.Fatalf("Undo() = %v, %v, want PersistenceError", done, err)
	}
	if got := snapshot(t, p); !equivalent(after, got) {
		t.Fatalf("undo was not rolled back: %+v", got)
	}
	if undo, redo := m.StackSizes(); undo != 1 || redo != 0 {
		t.Fatalf("stacks = %d/%d, want 1/0", undo, redo)
	}
}

// failingPersistence wraps a day store and fails mutations on demand.
type failingPersistence struct {
	daystore.Persistence
	failMutations bool
}

func (f *failingPersistence) AddNote(ctx context.Context, dateKey, content string) (*day.Note, error) {
	if f.failMutations {
		return nil, errors.New("store unavailable")
	}
	return f.Persistence.AddNote(ctx, dateKey, content)
}

func (f *failingPersistence) DeleteNote(ctx context.Context, dateKey, noteID string) error {
	if f.failMutations {
		return errors.New("store unavailable")
	}
	return f.Persistence.DeleteNote(ctx, dateKey, noteID)
}

func TestExecutionFailureLeavesStacksUnchanged(t *testing.T) {
	ctx := context.Background()
	fp := &failingPersistence{Persistence: daystore.NewMemory()}
	m := NewManager(testDay, NewMemoryStore(), fp, quietLogger())

	if err := m.ExecuteCommand(ctx, NewAddNote(fp, testDay, "first")); err != nil {
		t.Fatal(err)
	}
	fp.failMutations = true

	err := m.ExecuteCommand(ctx, NewAddNote(fp, testDay, "second"))
	var eerr *ExecutionError
	if !errors.As(err, &eerr) {
		t.Fatalf("ExecuteCommand() = %v, want ExecutionError", err)
	}
	if undo, redo := m.StackSizes(); undo != 1 || redo != 0 {
		t.Fatalf("stacks = %d/%d, want 1/0", undo, redo)
	}
}

func TestRollbackFailureReportedAsInconsistent(t *testing.T) {
	ctx := context.Background()

	// The add succeeds, persistence fails, and the compensating delete
	// fails too: the manager must surface the inconsistency, not hide it.
	p := &deleteFailsPersistence{Persistence: daystore.NewMemory()}
	fs := &failPutStore{Store: NewMemoryStore(), fail: true}
	m := NewManager(testDay, fs, p, quietLogger())

	err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "orphan"))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("ExecuteCommand() = %v, want PersistenceError", err)
	}
	if perr.Outcome != RollbackFailed {
		t.Fatalf("Outcome = %v, want RollbackFailed", perr.Outcome)
	}
	if perr.RollbackErr == nil {
		t.Fatal("RollbackErr = nil, want the rollback failure")
	}
}

type deleteFailsPersistence struct {
	daystore.Persistence
}

func (f *deleteFailsPersistence) DeleteNote(context.Context, string, string) error {
	return errors.New("store unavailable")
}

func TestBusyRejectsReentrancy(t *testing.T) {
	withConfig(t, Config{MaxHistorySize: 100, EnablePersistence: false, EnableOptimisticUpdates: true, MergeTimeWindow: time.Second})
	ctx := context.Background()
	m, p, _ := newTestManager(t)

	cmd := &reentrantCommand{AddNote: NewAddNote(p, testDay, "outer"), m: m}
	if err := m.ExecuteCommand(ctx, cmd); err != nil {
		t.Fatalf("ExecuteCommand() = %v", err)
	}
	if !errors.Is(cmd.inner, ErrBusy) {
		t.Fatalf("re-entrant call = %v, want ErrBusy", cmd.inner)
	}
	// The busy rejection changed nothing: the outer command landed once.
	if undo, _ := m.StackSizes(); undo != 1 {
		t.Fatalf("undo size = %d, want 1", undo)
	}
}

// reentrantCommand calls back into its own manager mid-execute.
type reentrantCommand struct {
	*AddNote
	m     *Manager
	inner error
}

func (c *reentrantCommand) Execute(ctx context.Context) error {
	c.inner = c.m.ExecuteCommand(ctx, NewAddNote(c.AddNote.p, testDay, "inner"))
	return c.AddNote.Execute(ctx)
}

func TestHydrateFromStore(t *testing.T) {
	ctx := context.Background()
	p := daystore.NewMemory()
	hs := NewMemoryStore()

	m := NewManager(testDay, hs, p, quietLogger())
	if err := m.ExecuteCommand(ctx, NewAddItem(p, testDay, "persisted")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Undo(ctx); err != nil {
		t.Fatal(err)
	}

	// A fresh manager on the same store sees both stacks.
	m2 := NewManager(testDay, hs, p, quietLogger())
	undo, redo := m2.StackSizes()
	if undo != 0 || redo != 1 {
		t.Fatalf("hydrated stacks = %d/%d, want 0/1", undo, redo)
	}
	if done, err := m2.Redo(ctx); !done || err != nil {
		t.Fatalf("Redo() after hydrate = %v, %v", done, err)
	}
	r := snapshot(t, p)
	if len(r.Checklist) != 1 || r.Checklist[0].Text != "persisted" {
		t.Fatalf("checklist = %+v", r.Checklist)
	}
}

func TestHydrateDropsBadEntries(t *testing.T) {
	p := daystore.NewMemory()
	hs := NewMemoryStore()

	good, err := Serialize(NewAddNote(p, testDay, "good"))
	if err != nil {
		t.Fatal(err)
	}
	bad := Serialized{ID: "x", Type: "teleport-note", DateKey: testDay, Timestamp: time.Now()}
	garbled := Serialized{ID: "y", Type: TypeEditNote, DateKey: testDay, Timestamp: time.Now(), Data: json.RawMessage(`{"noteId":`)}
	if err := hs.Put(&State{
		DateKey:   testDay,
		UndoStack: []Serialized{bad, good, garbled},
	}); err != nil {
		t.Fatal(err)
	}

	m := NewManager(testDay, hs, p, quietLogger())
	undo, redo := m.StackSizes()
	if undo != 1 || redo != 0 {
		t.Fatalf("stacks = %d/%d, want 1/0 (bad entries dropped)", undo, redo)
	}
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	m, p, hs := newTestManager(t)

	if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "n")); err != nil {
		t.Fatal(err)
	}
	if err := m.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory() = %v", err)
	}
	if undo, redo := m.StackSizes(); undo != 0 || redo != 0 {
		t.Fatalf("stacks = %d/%d, want empty", undo, redo)
	}
	st, ok, err := hs.Get(testDay)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if len(st.UndoStack) != 0 || len(st.RedoStack) != 0 {
		t.Fatalf("persisted stacks = %d/%d, want empty", len(st.UndoStack), len(st.RedoStack))
	}
}

func TestSwitchDate(t *testing.T) {
	ctx := context.Background()
	m, p, hs := newTestManager(t)
	const otherDay = "2026-01-03"

	if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "day one")); err != nil {
		t.Fatal(err)
	}
	if err := m.SwitchDate(otherDay); err != nil {
		t.Fatal(err)
	}
	if m.DateKey() != otherDay {
		t.Fatalf("DateKey() = %q, want %q", m.DateKey(), otherDay)
	}
	if undo, _ := m.StackSizes(); undo != 0 {
		t.Fatalf("undo size after switch = %d, want 0", undo)
	}

	// The first day's state survived the switch.
	st, ok, err := hs.Get(testDay)
	if err != nil || !ok || len(st.UndoStack) != 1 {
		t.Fatalf("persisted state for %s = %+v, %v, %v", testDay, st, ok, err)
	}

	// Switching back rehydrates.
	if err := m.SwitchDate(testDay); err != nil {
		t.Fatal(err)
	}
	if undo, _ := m.StackSizes(); undo != 1 {
		t.Fatalf("undo size after switch back = %d, want 1", undo)
	}
}

func TestListeners(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)

	var first, second int
	unsub := m.Subscribe(func() {
		first++
		panic("listener gone wrong")
	})
	m.Subscribe(func() { second++ })

	if err := m.ExecuteCommand(ctx, NewAddNote(p, testDay, "n")); err != nil {
		t.Fatal(err)
	}
	if first != 1 || second != 1 {
		t.Fatalf("listener calls = %d/%d, want 1/1 (panic must not block others)", first, second)
	}

	unsub()
	if _, err := m.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("listener calls after unsubscribe = %d/%d, want 1/2", first, second)
	}
}

func TestScenarioChecklistLifecycle(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)

	// add "Buy milk" -> toggle complete -> undo -> undo -> redo x2
	add := NewAddItem(p, testDay, "Buy milk")
	if err := m.ExecuteCommand(ctx, add); err != nil {
		t.Fatal(err)
	}
	itemID := snapshot(t, p).Checklist[0].ID
	if err := m.ExecuteCommand(ctx, NewToggleItem(p, testDay, itemID)); err != nil {
		t.Fatal(err)
	}
	if it := snapshot(t, p).Checklist[0]; !it.Completed {
		t.Fatal("item should be complete after toggle")
	}

	if _, err := m.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	r := snapshot(t, p)
	if len(r.Checklist) != 1 || r.Checklist[0].Completed {
		t.Fatalf("after first undo checklist = %+v, want one incomplete item", r.Checklist)
	}

	if _, err := m.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if r := snapshot(t, p); len(r.Checklist) != 0 {
		t.Fatalf("after second undo checklist = %+v, want empty", r.Checklist)
	}

	for i := 0; i < 2; i++ {
		if done, err := m.Redo(ctx); !done || err != nil {
			t.Fatalf("Redo() #%d = %v, %v", i+1, done, err)
		}
	}
	r = snapshot(t, p)
	if len(r.Checklist) != 1 || !r.Checklist[0].Completed || r.Checklist[0].Text != "Buy milk" {
		t.Fatalf("after redos checklist = %+v, want one completed %q", r.Checklist, "Buy milk")
	}
}

func TestBatchUndoneAsOneStep(t *testing.T) {
	ctx := context.Background()
	m, p, _ := newTestManager(t)

	batch := NewBatch(testDay, "Plan morning",
		NewAddItem(p, testDay, "coffee"),
		NewAddItem(p, testDay, "standup"),
		NewAddNote(p, testDay, "remember the retro"),
	)
	if err := m.ExecuteCommand(ctx, batch); err != nil {
		t.Fatal(err)
	}
	r := snapshot(t, p)
	if len(r.Checklist) != 2 || len(r.Notes) != 1 {
		t.Fatalf("record after batch = %+v", r)
	}
	if undo, _ := m.StackSizes(); undo != 1 {
		t.Fatalf("undo size = %d, want 1", undo)
	}
	if desc, ok := m.UndoDescription(); !ok || desc != "Plan morning" {
		t.Fatalf("UndoDescription() = %q, %v", desc, ok)
	}

	if _, err := m.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	r = snapshot(t, p)
	if len(r.Checklist) != 0 || len(r.Notes) != 0 {
		t.Fatalf("record after batch undo = %+v, want empty", r)
	}
}

func TestSerializeRoundTripKeepsUndoPayload(t *testing.T) {
	ctx := context.Background()
	p := daystore.NewMemory()
	it, err := p.AddChecklistItem(ctx, testDay, "target")
	if err != nil {
		t.Fatal(err)
	}

	del := NewDeleteItem(p, testDay, it.ID)
	if err := del.Execute(ctx); err != nil {
		t.Fatal(err)
	}

	s, err := Serialize(del)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Deserialize(p, s)
	if err != nil {
		t.Fatal(err)
	}
	restored, ok := back.(*DeleteItem)
	if !ok {
		t.Fatalf("Deserialize() = %T, want *DeleteItem", back)
	}
	if !reflect.DeepEqual(restored.order, del.order) || restored.snapshot.Text != "target" {
		t.Fatalf("restored payload = %+v, want captured snapshot and ordering", restored)
	}

	// The reconstructed command can still reverse the delete.
	if err := back.Undo(ctx); err != nil {
		t.Fatalf("Undo() after round trip = %v", err)
	}
	r, _ := p.GetDayData(ctx, testDay)
	if len(r.Checklist) != 1 || r.Checklist[0].Text != "target" {
		t.Fatalf("checklist = %+v", r.Checklist)
	}
}
