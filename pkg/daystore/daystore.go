// Package daystore persists one journal record per calendar day: the day's
// notes and its ordered checklist.
package daystore

import (
	"context"
	"errors"

	"tableflip.dev/daybook/pkg/day"
)

// ErrNotFound is returned when a note or checklist item id does not exist in
// the day's record.
var ErrNotFound = errors.New("daystore: not found")

// ItemUpdate describes a partial update to a checklist item. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Text      *string
	Completed *bool
}

// Persistence defines the persistence contract for day records. A missing
// day is not an error: GetDayData returns (nil, nil) and mutations create
// the record on first write.
type Persistence interface {
	AddNote(ctx context.Context, dateKey, content string) (*day.Note, error)
	UpdateNote(ctx context.Context, dateKey, noteID, content string) error
	DeleteNote(ctx context.Context, dateKey, noteID string) error

	AddChecklistItem(ctx context.Context, dateKey, text string) (*day.Item, error)
	UpdateChecklistItem(ctx context.Context, dateKey, itemID string, update ItemUpdate) error
	DeleteChecklistItem(ctx context.Context, dateKey, itemID string) error
	ReorderChecklistItems(ctx context.Context, dateKey string, orderedIDs []string) error

	GetDayData(ctx context.Context, dateKey string) (*day.Record, error)
	Days(ctx context.Context) []string

	Watch(ctx context.Context) (<-chan Event, error)
}

// Text returns an ItemUpdate that replaces the item text.
func Text(s string) ItemUpdate {
	return ItemUpdate{Text: &s}
}

// Completed returns an ItemUpdate that sets the completed flag.
func Completed(v bool) ItemUpdate {
	return ItemUpdate{Completed: &v}
}
