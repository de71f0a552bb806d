package history

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
)

// AddItem appends a checklist item to a day. Undo deletes the item created
// on execute.
type AddItem struct {
	meta
	p      daystore.Persistence
	text   string
	itemID string
}

func NewAddItem(p daystore.Persistence, dateKey, text string) *AddItem {
	return &AddItem{meta: newMeta(dateKey), p: p, text: text}
}

func (c *AddItem) Type() Type          { return TypeAddItem }
func (c *AddItem) Description() string { return "Add checklist item" }

func (c *AddItem) Execute(ctx context.Context) error {
	it, err := c.p.AddChecklistItem(ctx, c.dateKey, c.text)
	if err != nil {
		return err
	}
	c.itemID = it.ID
	return nil
}

func (c *AddItem) Undo(ctx context.Context) error {
	return c.p.DeleteChecklistItem(ctx, c.dateKey, c.itemID)
}

type addItemPayload struct {
	Text   string `json:"text"`
	ItemID string `json:"itemId,omitempty"`
}

func (c *AddItem) serialize() (Serialized, error) {
	return c.meta.serialized(TypeAddItem, addItemPayload{Text: c.text, ItemID: c.itemID})
}

func deserializeAddItem(p daystore.Persistence, s Serialized) (Command, error) {
	var pl addItemPayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &AddItem{meta: metaOf(s), p: p, text: pl.Text, itemID: pl.ItemID}, nil
}

// EditItemText replaces a checklist item's text, capturing the prior text on
// first execute. Mergeable within 1.5x the configured window.
type EditItemText struct {
	meta
	p        daystore.Persistence
	itemID   string
	oldText  string
	newText  string
	captured bool
}

func NewEditItemText(p daystore.Persistence, dateKey, itemID, newText string) *EditItemText {
	return &EditItemText{meta: newMeta(dateKey), p: p, itemID: itemID, newText: newText}
}

func (c *EditItemText) Type() Type          { return TypeEditItemText }
func (c *EditItemText) Description() string { return "Edit checklist item" }

func (c *EditItemText) Execute(ctx context.Context) error {
	if !c.captured {
		it, err := findItem(ctx, c.p, c.dateKey, c.itemID)
		if err != nil {
			return err
		}
		c.oldText = it.Text
		c.captured = true
	}
	return c.p.UpdateChecklistItem(ctx, c.dateKey, c.itemID, daystore.Text(c.newText))
}

func (c *EditItemText) Undo(ctx context.Context) error {
	return c.p.UpdateChecklistItem(ctx, c.dateKey, c.itemID, daystore.Text(c.oldText))
}

func (c *EditItemText) Merge(prev Command) (Command, bool) {
	pc, ok := prev.(*EditItemText)
	if !ok || pc.dateKey != c.dateKey || pc.itemID != c.itemID {
		return nil, false
	}
	if !withinWindow(pc.at, c.at, itemEditWindow(CurrentConfig())) {
		return nil, false
	}
	return &EditItemText{
		meta:     c.meta,
		p:        c.p,
		itemID:   c.itemID,
		oldText:  pc.oldText,
		newText:  c.newText,
		captured: true,
	}, true
}

type editItemTextPayload struct {
	ItemID  string `json:"itemId"`
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

func (c *EditItemText) serialize() (Serialized, error) {
	return c.meta.serialized(TypeEditItemText, editItemTextPayload{
		ItemID: c.itemID, OldText: c.oldText, NewText: c.newText,
	})
}

func deserializeEditItemText(p daystore.Persistence, s Serialized) (Command, error) {
	var pl editItemTextPayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &EditItemText{
		meta: metaOf(s), p: p,
		itemID: pl.ItemID, oldText: pl.OldText, newText: pl.NewText,
		captured: true,
	}, nil
}

// ToggleItem flips a checklist item's completed flag. The prior value is
// captured on first execute so undo restores exactly what was there, even if
// another mutation touched the item in between.
type ToggleItem struct {
	meta
	p            daystore.Persistence
	itemID       string
	wasCompleted bool
	captured     bool
}

func NewToggleItem(p daystore.Persistence, dateKey, itemID string) *ToggleItem {
	return &ToggleItem{meta: newMeta(dateKey), p: p, itemID: itemID}
}

func (c *ToggleItem) Type() Type          { return TypeToggleItem }
func (c *ToggleItem) Description() string { return "Toggle checklist item" }

func (c *ToggleItem) Execute(ctx context.Context) error {
	if !c.captured {
		it, err := findItem(ctx, c.p, c.dateKey, c.itemID)
		if err != nil {
			return err
		}
		c.wasCompleted = it.Completed
		c.captured = true
	}
	return c.p.UpdateChecklistItem(ctx, c.dateKey, c.itemID, daystore.Completed(!c.wasCompleted))
}

func (c *ToggleItem) Undo(ctx context.Context) error {
	return c.p.UpdateChecklistItem(ctx, c.dateKey, c.itemID, daystore.Completed(c.wasCompleted))
}

type toggleItemPayload struct {
	ItemID       string `json:"itemId"`
	WasCompleted bool   `json:"wasCompleted"`
}

func (c *ToggleItem) serialize() (Serialized, error) {
	return c.meta.serialized(TypeToggleItem, toggleItemPayload{ItemID: c.itemID, WasCompleted: c.wasCompleted})
}

func deserializeToggleItem(p daystore.Persistence, s Serialized) (Command, error) {
	var pl toggleItemPayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &ToggleItem{meta: metaOf(s), p: p, itemID: pl.ItemID, wasCompleted: pl.WasCompleted, captured: true}, nil
}

// DeleteItem removes a checklist item, snapshotting the item and the full
// prior ordering before the delete. Undo re-inserts equivalent content under
// a fresh id and restores its position.
type DeleteItem struct {
	meta
	p        daystore.Persistence
	itemID   string
	snapshot day.Item
	order    []string
	captured bool
}

func NewDeleteItem(p daystore.Persistence, dateKey, itemID string) *DeleteItem {
	return &DeleteItem{meta: newMeta(dateKey), p: p, itemID: itemID}
}

func (c *DeleteItem) Type() Type          { return TypeDeleteItem }
func (c *DeleteItem) Description() string { return "Delete checklist item" }

func (c *DeleteItem) Execute(ctx context.Context) error {
	if !c.captured {
		r, err := getDay(ctx, c.p, c.dateKey)
		if err != nil {
			return err
		}
		it := r.Item(c.itemID)
		if it == nil {
			return fmt.Errorf("checklist item %s: %w", c.itemID, daystore.ErrNotFound)
		}
		c.snapshot = *it
		c.order = r.ItemOrder()
		c.captured = true
	}
	return c.p.DeleteChecklistItem(ctx, c.dateKey, c.itemID)
}

func (c *DeleteItem) Undo(ctx context.Context) error {
	it, err := c.p.AddChecklistItem(ctx, c.dateKey, c.snapshot.Text)
	if err != nil {
		return err
	}
	if c.snapshot.Completed {
		if err := c.p.UpdateChecklistItem(ctx, c.dateKey, it.ID, daystore.Completed(true)); err != nil {
			return err
		}
	}
	// Put the restored item back in its old position, tracking its new id in
	// the captured ordering so a redo/undo cycle keeps working.
	for i, id := range c.order {
		if id == c.itemID {
			c.order[i] = it.ID
		}
	}
	c.itemID = it.ID
	return c.p.ReorderChecklistItems(ctx, c.dateKey, c.order)
}

type deleteItemPayload struct {
	ItemID   string   `json:"itemId"`
	Snapshot day.Item `json:"snapshot"`
	Order    []string `json:"order"`
}

func (c *DeleteItem) serialize() (Serialized, error) {
	return c.meta.serialized(TypeDeleteItem, deleteItemPayload{ItemID: c.itemID, Snapshot: c.snapshot, Order: c.order})
}

func deserializeDeleteItem(p daystore.Persistence, s Serialized) (Command, error) {
	var pl deleteItemPayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &DeleteItem{meta: metaOf(s), p: p, itemID: pl.ItemID, snapshot: pl.Snapshot, order: pl.Order, captured: true}, nil
}

// ReorderItems rearranges the checklist, capturing the full prior ordering
// on first execute. Consecutive reorders within 0.5x the configured window
// merge, so dragging an item across several positions is one undo step.
type ReorderItems struct {
	meta
	p        daystore.Persistence
	after    []string
	before   []string
	captured bool
}

func NewReorderItems(p daystore.Persistence, dateKey string, orderedIDs []string) *ReorderItems {
	return &ReorderItems{meta: newMeta(dateKey), p: p, after: append([]string(nil), orderedIDs...)}
}

func (c *ReorderItems) Type() Type          { return TypeReorderItems }
func (c *ReorderItems) Description() string { return "Reorder checklist" }

func (c *ReorderItems) Execute(ctx context.Context) error {
	if !c.captured {
		r, err := getDay(ctx, c.p, c.dateKey)
		if err != nil {
			return err
		}
		c.before = r.ItemOrder()
		c.captured = true
	}
	return c.p.ReorderChecklistItems(ctx, c.dateKey, c.after)
}

func (c *ReorderItems) Undo(ctx context.Context) error {
	return c.p.ReorderChecklistItems(ctx, c.dateKey, c.before)
}

func (c *ReorderItems) Merge(prev Command) (Command, bool) {
	pc, ok := prev.(*ReorderItems)
	if !ok || pc.dateKey != c.dateKey {
		return nil, false
	}
	if !withinWindow(pc.at, c.at, reorderWindow(CurrentConfig())) {
		return nil, false
	}
	return &ReorderItems{
		meta:     c.meta,
		p:        c.p,
		after:    c.after,
		before:   pc.before,
		captured: true,
	}, true
}

type reorderItemsPayload struct {
	After  []string `json:"after"`
	Before []string `json:"before"`
}

func (c *ReorderItems) serialize() (Serialized, error) {
	return c.meta.serialized(TypeReorderItems, reorderItemsPayload{After: c.after, Before: c.before})
}

func deserializeReorderItems(p daystore.Persistence, s Serialized) (Command, error) {
	var pl reorderItemsPayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	return &ReorderItems{meta: metaOf(s), p: p, after: pl.After, before: pl.Before, captured: true}, nil
}

func getDay(ctx context.Context, p daystore.Persistence, dateKey string) (*day.Record, error) {
	r, err := p.GetDayData(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = &day.Record{DateKey: dateKey}
	}
	return r, nil
}

func findItem(ctx context.Context, p daystore.Persistence, dateKey, itemID string) (*day.Item, error) {
	r, err := p.GetDayData(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("checklist item %s: %w", itemID, daystore.ErrNotFound)
	}
	it := r.Item(itemID)
	if it == nil {
		return nil, fmt.Errorf("checklist item %s: %w", itemID, daystore.ErrNotFound)
	}
	return it, nil
}
