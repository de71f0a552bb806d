// Package history implements the persisted, mergeable undo/redo engine.
// Every mutation of a day record is expressed as a Command: a reversible
// unit of work partitioned by date key. Commands on one day form an
// independent history, coordinated by a Manager and persisted by a Store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/daystore"
)

// Type tags the concrete command variants. Serialization, deserialization,
// and merge eligibility all dispatch on this tag; adding a variant means
// adding a tag and its switch arms.
type Type string

const (
	TypeAddNote      Type = "add-note"
	TypeEditNote     Type = "edit-note"
	TypeDeleteNote   Type = "delete-note"
	TypeAddItem      Type = "add-item"
	TypeEditItemText Type = "edit-item-text"
	TypeToggleItem   Type = "toggle-item"
	TypeDeleteItem   Type = "delete-item"
	TypeReorderItems Type = "reorder-items"
	TypeBatch        Type = "batch"
)

// Command is a reversible unit of work against one day's record.
//
// Execute applies the forward mutation and must only be called once per
// logical application (the Manager re-invokes it on redo, after the matching
// Undo). Undo applied immediately after Execute must restore observable
// state identical to before Execute; each variant captures whatever prior
// state it needs to honor that.
type Command interface {
	ID() string
	Type() Type
	DateKey() string
	Time() time.Time
	Description() string
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
}

// Merger is implemented by commands that can coalesce with their immediate
// predecessor on the undo stack, so a burst of small same-target edits
// collapses into a single undo step.
type Merger interface {
	// Merge returns a replacement command combining prev (already executed,
	// top of the undo stack) with the receiver (not yet executed), or false
	// when the two cannot be fused. The replacement keeps prev's captured
	// before-state and the receiver's after-state and timestamp.
	Merge(prev Command) (Command, bool)
}

// Serialized is the wire form of a command: everything Deserialize needs to
// reconstruct an equivalent command, including captured before-state.
type Serialized struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	DateKey   string          `json:"dateKey"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// meta carries the identity shared by every catalog command.
type meta struct {
	id      string
	dateKey string
	at      time.Time
}

func newMeta(dateKey string) meta {
	return meta{id: uuid.New().String(), dateKey: dateKey, at: time.Now()}
}

func (m meta) ID() string      { return m.id }
func (m meta) DateKey() string { return m.dateKey }
func (m meta) Time() time.Time { return m.at }

func (m meta) serialized(t Type, payload any) (Serialized, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Serialized{}, fmt.Errorf("history: encode %s: %w", t, err)
	}
	return Serialized{ID: m.id, Type: t, DateKey: m.dateKey, Timestamp: m.at, Data: data}, nil
}

func metaOf(s Serialized) meta {
	return meta{id: s.ID, dateKey: s.DateKey, at: s.Timestamp}
}

// Serialize converts a catalog command to its wire form. The switch is
// exhaustive over the catalog; an unknown concrete type is a programming
// error.
func Serialize(c Command) (Serialized, error) {
	switch cmd := c.(type) {
	case *AddNote:
		return cmd.serialize()
	case *EditNote:
		return cmd.serialize()
	case *DeleteNote:
		return cmd.serialize()
	case *AddItem:
		return cmd.serialize()
	case *EditItemText:
		return cmd.serialize()
	case *ToggleItem:
		return cmd.serialize()
	case *DeleteItem:
		return cmd.serialize()
	case *ReorderItems:
		return cmd.serialize()
	case *Batch:
		return cmd.serialize()
	default:
		return Serialized{}, fmt.Errorf("history: cannot serialize %T", c)
	}
}

// Deserialize reconstructs a command from its wire form, rebinding it to the
// given day store. Unrecognized type tags and malformed payloads are errors;
// callers hydrating a stack drop the offending entry and keep going.
func Deserialize(p daystore.Persistence, s Serialized) (Command, error) {
	switch s.Type {
	case TypeAddNote:
		return deserializeAddNote(p, s)
	case TypeEditNote:
		return deserializeEditNote(p, s)
	case TypeDeleteNote:
		return deserializeDeleteNote(p, s)
	case TypeAddItem:
		return deserializeAddItem(p, s)
	case TypeEditItemText:
		return deserializeEditItemText(p, s)
	case TypeToggleItem:
		return deserializeToggleItem(p, s)
	case TypeDeleteItem:
		return deserializeDeleteItem(p, s)
	case TypeReorderItems:
		return deserializeReorderItems(p, s)
	case TypeBatch:
		return deserializeBatch(p, s)
	default:
		return nil, fmt.Errorf("history: unknown command type %q", s.Type)
	}
}

func decode(s Serialized, into any) error {
	if err := json.Unmarshal(s.Data, into); err != nil {
		return fmt.Errorf("history: decode %s payload: %w", s.Type, err)
	}
	return nil
}
