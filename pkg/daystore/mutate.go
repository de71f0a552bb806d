package daystore

import (
	"fmt"
	"time"

	"tableflip.dev/daybook/pkg/day"
)

// The mutation helpers below operate on an in-memory record. Both the diskv
// and the memory backends load a record, apply one of these, and save.

func addNote(r *day.Record, content string) *day.Note {
	n := day.NewNote(content)
	r.Notes = append(r.Notes, n)
	return &r.Notes[len(r.Notes)-1]
}

func updateNote(r *day.Record, noteID, content string) error {
	n := r.Note(noteID)
	if n == nil {
		return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
	}
	n.Content = content
	n.UpdatedAt = time.Now()
	return nil
}

func deleteNote(r *day.Record, noteID string) error {
	for i := range r.Notes {
		if r.Notes[i].ID == noteID {
			r.Notes = append(r.Notes[:i], r.Notes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
}

func addItem(r *day.Record, text string) *day.Item {
	it := day.NewItem(text, len(r.Checklist))
	r.Checklist = append(r.Checklist, it)
	return &r.Checklist[len(r.Checklist)-1]
}

func updateItem(r *day.Record, itemID string, update ItemUpdate) error {
	it := r.Item(itemID)
	if it == nil {
		return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
	}
	if update.Text != nil {
		it.Text = *update.Text
	}
	if update.Completed != nil {
		it.Completed = *update.Completed
	}
	it.UpdatedAt = time.Now()
	return nil
}

func deleteItem(r *day.Record, itemID string) error {
	for i := range r.Checklist {
		if r.Checklist[i].ID == itemID {
			r.Checklist = append(r.Checklist[:i], r.Checklist[i+1:]...)
			renumber(r)
			return nil
		}
	}
	return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
}

func reorderItems(r *day.Record, orderedIDs []string) error {
	if len(orderedIDs) != len(r.Checklist) {
		return fmt.Errorf("daystore: reorder lists %d ids, checklist has %d items", len(orderedIDs), len(r.Checklist))
	}
	byID := make(map[string]day.Item, len(r.Checklist))
	for _, it := range r.Checklist {
		byID[it.ID] = it
	}
	next := make([]day.Item, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		it, ok := byID[id]
		if !ok {
			return fmt.Errorf("checklist item %s: %w", id, ErrNotFound)
		}
		delete(byID, id)
		next = append(next, it)
	}
	r.Checklist = next
	renumber(r)
	return nil
}

func renumber(r *day.Record) {
	for i := range r.Checklist {
		r.Checklist[i].Order = i
	}
}
