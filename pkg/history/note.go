package history

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
)

// AddNote appends a note to a day. Undo deletes the note created on execute.
type AddNote struct {
	meta
	p       daystore.Persistence
	content string
	noteID  string
}

func NewAddNote(p daystore.Persistence, dateKey, content string) *AddNote {
	return &AddNote{meta: newMeta(dateKey), p: p, content: content}
}

func (c *AddNote) Type() Type          { return TypeAddNote }
func (c *AddNote) Description() string { return "Add note" }

func (c *AddNote) Execute(ctx context.Context) error {
	n, err := c.p.AddNote(ctx, c.dateKey, c.content)
	if err != nil {
		return err
	}
	c.noteID = n.ID
	return nil
}

func (c *AddNote) Undo(ctx context.Context) error {
	return c.p.DeleteNote(ctx, c.dateKey, c.noteID)
}

type addNotePayload struct {
	Content string `json:"content"`
	NoteID  string `json:"noteId,omitempty"`
}

func (c *AddNote) serialize() (Serialized, error) {
	return c.meta.serialized(TypeAddNote, addNotePayload{Content: c.content, NoteID: c.noteID})
}

func deserializeAddNote(p daystore.Persistence, s Serialized) (Command, error) {
	var pl addNotePayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &AddNote{meta: metaOf(s), p: p, content: pl.Content, noteID: pl.NoteID}, nil
}

// EditNote replaces a note's content, capturing the prior content on first
// execute so undo can restore it. Consecutive edits of the same note within
// the merge window coalesce into one undo step spanning the burst.
type EditNote struct {
	meta
	p          daystore.Persistence
	noteID     string
	oldContent string
	newContent string
	captured   bool
}

func NewEditNote(p daystore.Persistence, dateKey, noteID, newContent string) *EditNote {
	return &EditNote{meta: newMeta(dateKey), p: p, noteID: noteID, newContent: newContent}
}

func (c *EditNote) Type() Type          { return TypeEditNote }
func (c *EditNote) Description() string { return "Edit note" }

func (c *EditNote) Execute(ctx context.Context) error {
	if !c.captured {
		n, err := findNote(ctx, c.p, c.dateKey, c.noteID)
		if err != nil {
			return err
		}
		c.oldContent = n.Content
		c.captured = true
	}
	return c.p.UpdateNote(ctx, c.dateKey, c.noteID, c.newContent)
}

func (c *EditNote) Undo(ctx context.Context) error {
	return c.p.UpdateNote(ctx, c.dateKey, c.noteID, c.oldContent)
}

func (c *EditNote) Merge(prev Command) (Command, bool) {
	pc, ok := prev.(*EditNote)
	if !ok || pc.dateKey != c.dateKey || pc.noteID != c.noteID {
		return nil, false
	}
	if !withinWindow(pc.at, c.at, noteEditWindow(CurrentConfig())) {
		return nil, false
	}
	return &EditNote{
		meta:       c.meta,
		p:          c.p,
		noteID:     c.noteID,
		oldContent: pc.oldContent,
		newContent: c.newContent,
		captured:   true,
	}, true
}

type editNotePayload struct {
	NoteID     string `json:"noteId"`
	OldContent string `json:"oldContent"`
	NewContent string `json:"newContent"`
}

func (c *EditNote) serialize() (Serialized, error) {
	return c.meta.serialized(TypeEditNote, editNotePayload{
		NoteID: c.noteID, OldContent: c.oldContent, NewContent: c.newContent,
	})
}

func deserializeEditNote(p daystore.Persistence, s Serialized) (Command, error) {
	var pl editNotePayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &EditNote{
		meta: metaOf(s), p: p,
		noteID: pl.NoteID, oldContent: pl.OldContent, newContent: pl.NewContent,
		captured: true,
	}, nil
}

// DeleteNote removes a note, snapshotting it before the delete. Undo
// re-inserts equivalent content under a fresh id.
type DeleteNote struct {
	meta
	p        daystore.Persistence
	noteID   string
	snapshot day.Note
	captured bool
}

func NewDeleteNote(p daystore.Persistence, dateKey, noteID string) *DeleteNote {
	return &DeleteNote{meta: newMeta(dateKey), p: p, noteID: noteID}
}

func (c *DeleteNote) Type() Type          { return TypeDeleteNote }
func (c *DeleteNote) Description() string { return "Delete note" }

func (c *DeleteNote) Execute(ctx context.Context) error {
	if !c.captured {
		n, err := findNote(ctx, c.p, c.dateKey, c.noteID)
		if err != nil {
			return err
		}
		c.snapshot = *n
		c.captured = true
	}
	return c.p.DeleteNote(ctx, c.dateKey, c.noteID)
}

func (c *DeleteNote) Undo(ctx context.Context) error {
	n, err := c.p.AddNote(ctx, c.dateKey, c.snapshot.Content)
	if err != nil {
		return err
	}
	// The restored note has a new id; keep tracking it so a redo deletes the
	// restored copy.
	c.noteID = n.ID
	return nil
}

type deleteNotePayload struct {
	NoteID   string   `json:"noteId"`
	Snapshot day.Note `json:"snapshot"`
}

func (c *DeleteNote) serialize() (Serialized, error) {
	return c.meta.serialized(TypeDeleteNote, deleteNotePayload{NoteID: c.noteID, Snapshot: c.snapshot})
}

func deserializeDeleteNote(p daystore.Persistence, s Serialized) (Command, error) {
	var pl deleteNotePayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &DeleteNote{meta: metaOf(s), p: p, noteID: pl.NoteID, snapshot: pl.Snapshot, captured: true}, nil
}

func findNote(ctx context.Context, p daystore.Persistence, dateKey, noteID string) (*day.Note, error) {
	r, err := p.GetDayData(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("note %s: %w", noteID, daystore.ErrNotFound)
	}
	n := r.Note(noteID)
	if n == nil {
		return nil, fmt.Errorf("note %s: %w", noteID, daystore.ErrNotFound)
	}
	return n, nil
}
