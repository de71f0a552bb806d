package add

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

// Kind selects what gets added.
type Kind string

const (
	KindNote  Kind = "note"
	KindCheck Kind = "check"
)

type Add struct {
	Kind    Kind
	Message string
	DateKey string
	ShowID  bool

	Persistence daystore.Persistence
	Session     *undoredo.Session
}

func (a *Add) Do(ctx context.Context) error {
	var cmd history.Command
	switch a.Kind {
	case KindNote:
		cmd = history.NewAddNote(a.Persistence, a.DateKey, a.Message)
	case KindCheck:
		cmd = history.NewAddItem(a.Persistence, a.DateKey, a.Message)
	default:
		return fmt.Errorf("add: unknown kind %q", a.Kind)
	}

	pp := printers.PrettyPrint{ShowID: a.ShowID}
	if err := pp.Outcome(a.Session.ExecuteCommand(ctx, cmd)); err != nil {
		return err
	}

	r, err := a.Persistence.GetDayData(ctx, a.DateKey)
	if err != nil {
		return err
	}
	pp.Title(a.DateKey)
	pp.Day(r)
	return nil
}
