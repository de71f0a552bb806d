package edit

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

type Edit struct {
	ID      string
	Message string
	DateKey string
	ShowID  bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (e *Edit) Do(ctx context.Context) error {
	r, err := e.Persistence.GetDayData(ctx, e.DateKey)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("edit: nothing recorded on %s", e.DateKey)
	}
	kind, id, err := r.Resolve(e.ID)
	if err != nil {
		return err
	}

	var cmd history.Command
	switch kind {
	case day.RefNote:
		cmd = history.NewEditNote(e.Persistence, e.DateKey, id, e.Message)
	case day.RefItem:
		cmd = history.NewEditItemText(e.Persistence, e.DateKey, id, e.Message)
	}

	pp := printers.PrettyPrint{ShowID: e.ShowID}
	if err := pp.Outcome(e.Session.ExecuteCommand(ctx, cmd)); err != nil {
		return err
	}

	r, err = e.Persistence.GetDayData(ctx, e.DateKey)
	if err != nil {
		return err
	}
	pp.Title(e.DateKey)
	pp.Day(r)
	return nil
}
