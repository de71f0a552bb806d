package day

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-form note attached to a single day.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item is one checklist entry attached to a single day. Order is the
// position within the day's checklist, starting at zero.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Record holds everything stored for one calendar day.
type Record struct {
	DateKey   string `json:"dateKey"`
	Notes     []Note `json:"notes,omitempty"`
	Checklist []Item `json:"checklist,omitempty"`
}

// NewNote creates a note with a generated id and creation timestamps.
func NewNote(content string) Note {
	now := time.Now()
	return Note{
		ID:        uuid.New().String(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewItem creates an incomplete checklist item with a generated id at the
// given position.
func NewItem(text string, order int) Item {
	now := time.Now()
	return Item{
		ID:        uuid.New().String(),
		Text:      text,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the record so callers can hold snapshots
// without aliasing store-owned slices.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := &Record{DateKey: r.DateKey}
	if len(r.Notes) > 0 {
		cp.Notes = append([]Note(nil), r.Notes...)
	}
	if len(r.Checklist) > 0 {
		cp.Checklist = append([]Item(nil), r.Checklist...)
	}
	return cp
}

// Note returns the note with the given id, or nil.
func (r *Record) Note(id string) *Note {
	for i := range r.Notes {
		if r.Notes[i].ID == id {
			return &r.Notes[i]
		}
	}
	return nil
}

// Item returns the checklist item with the given id, or nil.
func (r *Record) Item(id string) *Item {
	for i := range r.Checklist {
		if r.Checklist[i].ID == id {
			return &r.Checklist[i]
		}
	}
	return nil
}

// ItemOrder returns the checklist item ids in their current order.
func (r *Record) ItemOrder() []string {
	ids := make([]string, len(r.Checklist))
	for i, it := range r.Checklist {
		ids[i] = it.ID
	}
	return ids
}
