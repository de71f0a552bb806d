package history

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/daystore"
)

// Batch groups several commands into one undo step. Execute applies the
// children in order; if a child fails, the ones already applied are reversed
// best-effort and the child's error is returned. Undo reverses the children
// back to front.
type Batch struct {
	meta
	label    string
	children []Command
}

// NewBatch creates a composite command. All children must share the batch's
// date key; the label becomes the undo/redo description.
func NewBatch(dateKey, label string, children ...Command) *Batch {
	return &Batch{meta: newMeta(dateKey), label: label, children: children}
}

func (c *Batch) Type() Type { return TypeBatch }

func (c *Batch) Description() string {
	if c.label != "" {
		return c.label
	}
	return fmt.Sprintf("%d actions", len(c.children))
}

func (c *Batch) Execute(ctx context.Context) error {
	for i, child := range c.children {
		if err := child.Execute(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := c.children[j].Undo(ctx); uerr != nil {
					return fmt.Errorf("batch step %d failed (%w); reverting step %d also failed: %v", i, err, j, uerr)
				}
			}
			return err
		}
	}
	return nil
}

func (c *Batch) Undo(ctx context.Context) error {
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].Undo(ctx); err != nil {
			return fmt.Errorf("batch step %d: %w", i, err)
		}
	}
	return nil
}

type batchPayload struct {
	Label    string       `json:"label,omitempty"`
	Children []Serialized `json:"children"`
}

func (c *Batch) serialize() (Serialized, error) {
	children := make([]Serialized, len(c.children))
	for i, child := range c.children {
		s, err := Serialize(child)
		if err != nil {
			return Serialized{}, err
		}
		children[i] = s
	}
	return c.meta.serialized(TypeBatch, batchPayload{Label: c.label, Children: children})
}

func deserializeBatch(p daystore.Persistence, s Serialized) (Command, error) {
	var pl batchPayload
	if err := decode(s, &pl); err != nil {
		return nil, err
	}
	children := make([]Command, len(pl.Children))
	for i, cs := range pl.Children {
		child, err := Deserialize(p, cs)
		if err != nil {
			return nil, fmt.Errorf("batch child %d: %w", i, err)
		}
		children[i] = child
	}
	return &Batch{meta: metaOf(s), label: pl.Label, children: children}, nil
}
