package remove

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

type Remove struct {
	ID      string
	DateKey string
	ShowID  bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (rm *Remove) Do(ctx context.Context) error {
	r, err := rm.Persistence.GetDayData(ctx, rm.DateKey)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("remove: nothing recorded on %s", rm.DateKey)
	}
	kind, id, err := r.Resolve(rm.ID)
	if err != nil {
		return err
	}

	var cmd history.Command
	switch kind {
	case day.RefNote:
		cmd = history.NewDeleteNote(rm.Persistence, rm.DateKey, id)
	case day.RefItem:
		cmd = history.NewDeleteItem(rm.Persistence, rm.DateKey, id)
	}

	pp := printers.PrettyPrint{ShowID: rm.ShowID}
	if err := pp.Outcome(rm.Session.ExecuteCommand(ctx, cmd)); err != nil {
		return err
	}

	r, err = rm.Persistence.GetDayData(ctx, rm.DateKey)
	if err != nil {
		return err
	}
	pp.Title(rm.DateKey)
	pp.Day(r)
	return nil
}
