package undo

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

type Undo struct {
	DateKey string
	ShowID  bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (u *Undo) Do(ctx context.Context) error {
	u.Session.SetDate(u.DateKey)

	desc, _ := u.Session.UndoDescription()
	pp := printers.PrettyPrint{ShowID: u.ShowID}

	done, err := u.Session.Undo(ctx)
	if err := pp.Outcome(err); err != nil {
		return err
	}
	if !done {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Printf("nothing to undo on %s\n", u.DateKey)
		return nil
	}
	fmt.Printf("undid: %s\n\n", desc)

	r, err := u.Persistence.GetDayData(ctx, u.DateKey)
	if err != nil {
		return err
	}
	pp.Title(u.DateKey)
	pp.Day(r)
	return nil
}
