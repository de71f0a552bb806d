// Package historycmd implements the CLI verb that inspects or clears a
// day's undo/redo history.
package historycmd

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/undoredo"
)

type History struct {
	DateKey string
	Clear   bool

	Session *undoredo.Session
}

func (h *History) Do(ctx context.Context) error {
	h.Session.SetDate(h.DateKey)
	pp := printers.PrettyPrint{}

	if h.Clear {
		if err := pp.Outcome(h.Session.ClearHistory()); err != nil {
			return err
		}
		fmt.Printf("history cleared for %s\n", h.DateKey)
		return nil
	}

	pp.History(h.Session)
	return nil
}
