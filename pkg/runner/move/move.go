package move

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

// Move repositions a checklist item, expressed as a full reorder so one undo
// restores the prior arrangement.
type Move struct {
	ID       string
	Position int // 1-based target position
	DateKey  string
	ShowID   bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (m *Move) Do(ctx context.Context) error {
	r, err := m.Persistence.GetDayData(ctx, m.DateKey)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("move: nothing recorded on %s", m.DateKey)
	}
	kind, id, err := r.Resolve(m.ID)
	if err != nil {
		return err
	}
	if kind != day.RefItem {
		return fmt.Errorf("move: %s is a note; only checklist items have positions", m.ID)
	}
	if m.Position < 1 || m.Position > len(r.Checklist) {
		return fmt.Errorf("move: position %d out of range 1..%d", m.Position, len(r.Checklist))
	}

	ordered := make([]string, 0, len(r.Checklist))
	for _, cur := range r.ItemOrder() {
		if cur != id {
			ordered = append(ordered, cur)
		}
	}
	at := m.Position - 1
	ordered = append(ordered[:at], append([]string{id}, ordered[at:]...)...)

	pp := printers.PrettyPrint{ShowID: m.ShowID}
	cmd := history.NewReorderItems(m.Persistence, m.DateKey, ordered)
	if err := pp.Outcome(m.Session.ExecuteCommand(ctx, cmd)); err != nil {
		return err
	}

	r, err = m.Persistence.GetDayData(ctx, m.DateKey)
	if err != nil {
		return err
	}
	pp.Title(m.DateKey)
	pp.Day(r)
	return nil
}
