package undoredo

import "strings"

// Action is what a key chord resolves to.
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionRedo
)

// Keymap maps key chords (in bubbletea's msg.String() form, e.g. "ctrl+z")
// to undo/redo actions. While a text-editing control has focus the chords
// are suppressed unless the override modifier is also held, so typing never
// triggers history operations by accident.
type Keymap struct {
	Undo     []string
	Redo     []string
	Override string // modifier that re-enables chords while editing
}

// DefaultKeymap wires the cross-platform convention: primary+z undoes,
// primary+shift+z and primary+y redo.
func DefaultKeymap() Keymap {
	return Keymap{
		Undo:     []string{"ctrl+z"},
		Redo:     []string{"ctrl+shift+z", "ctrl+y"},
		Override: "alt",
	}
}

// Match resolves a key chord to an action. editing indicates that focus is
// inside a text-editing control.
func (k Keymap) Match(key string, editing bool) Action {
	chord, override := k.stripOverride(key)
	if editing && !override {
		return ActionNone
	}
	for _, want := range k.Undo {
		if chord == want {
			return ActionUndo
		}
	}
	for _, want := range k.Redo {
		if chord == want {
			return ActionRedo
		}
	}
	return ActionNone
}

// stripOverride removes the override modifier from the chord, reporting
// whether it was present.
func (k Keymap) stripOverride(key string) (string, bool) {
	if k.Override == "" {
		return key, false
	}
	parts := strings.Split(key, "+")
	kept := parts[:0]
	override := false
	for _, part := range parts {
		if part == k.Override {
			override = true
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "+"), override
}
