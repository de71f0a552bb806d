package redo

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

type Redo struct {
	DateKey string
	ShowID  bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (rd *Redo) Do(ctx context.Context) error {
	rd.Session.SetDate(rd.DateKey)

	desc, _ := rd.Session.RedoDescription()
	pp := printers.PrettyPrint{ShowID: rd.ShowID}

	done, err := rd.Session.Redo(ctx)
	if err := pp.Outcome(err); err != nil {
		return err
	}
	if !done {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Printf("nothing to redo on %s\n", rd.DateKey)
		return nil
	}
	fmt.Printf("redid: %s\n\n", desc)

	r, err := rd.Persistence.GetDayData(ctx, rd.DateKey)
	if err != nil {
		return err
	}
	pp.Title(rd.DateKey)
	pp.Day(r)
	return nil
}
