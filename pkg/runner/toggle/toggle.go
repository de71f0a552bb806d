package toggle

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

type Toggle struct {
	ID      string
	DateKey string
	ShowID  bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (t *Toggle) Do(ctx context.Context) error {
	r, err := t.Persistence.GetDayData(ctx, t.DateKey)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("done: nothing recorded on %s", t.DateKey)
	}
	kind, id, err := r.Resolve(t.ID)
	if err != nil {
		return err
	}
	if kind != day.RefItem {
		return fmt.Errorf("done: %s is a note; only checklist items can be completed", t.ID)
	}

	pp := printers.PrettyPrint{ShowID: t.ShowID}
	cmd := history.NewToggleItem(t.Persistence, t.DateKey, id)
	if err := pp.Outcome(t.Session.ExecuteCommand(ctx, cmd)); err != nil {
		return err
	}

	r, err = t.Persistence.GetDayData(ctx, t.DateKey)
	if err != nil {
		return err
	}
	pp.Title(t.DateKey)
	pp.Day(r)
	return nil
}
