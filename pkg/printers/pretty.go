package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/undoredo"
)

// PrettyPrint renders day records and history status for the terminal.
type PrettyPrint struct {
	ShowID bool
}

var spacing = strings.Repeat(" ", len("171dff69-f8b9-9dca  "))

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Println(title)
}

// Day prints a full day record: notes first, then the checklist in order.
func (pp *PrettyPrint) Day(r *day.Record) {
	if r == nil || (len(r.Notes) == 0 && len(r.Checklist) == 0) {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Print(spacing)
		}
		_, _ = f.Print(" nothing recorded\n\n")
		return
	}

	if len(r.Notes) > 0 {
		pp.notes(r.Notes)
	}
	if len(r.Checklist) > 0 {
		pp.checklist(r.Checklist)
	}
}

func (pp *PrettyPrint) notes(notes []day.Note) {
	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, n := range notes {
		if pp.ShowID {
			_, _ = y.Print(pad(n.ID))
		}
		_, _ = t.Printf("– %s\n", n.Content)
	}
	_, _ = t.Println("")
}

func (pp *PrettyPrint) checklist(items []day.Item) {
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = " "
	for _, it := range items {
		box := "☐"
		text := it.Text
		if it.Completed {
			box = "☑"
		}
		if pp.ShowID {
			tbl.AddRow(y.Sprint(pad(it.ID)), box, text)
		} else {
			tbl.AddRow(box, text)
		}
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	fmt.Println("")
}

// History prints undo/redo availability for the session's active day.
func (pp *PrettyPrint) History(s *undoredo.Session) {
	pp.Title(s.DateKey())

	undo, redo := s.StackSizes()
	if undo == 0 && redo == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" no history\n\n")
		return
	}

	c := color.New(color.Faint)
	if desc, ok := s.UndoDescription(); ok {
		_, _ = c.Printf("undo: %s (%s)\n", desc, steps(undo))
	}
	if desc, ok := s.RedoDescription(); ok {
		_, _ = c.Printf("redo: %s (%s)\n", desc, steps(redo))
	}
	fmt.Println("")
}

func steps(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

// Outcome renders the soft failure classes of an engine error and passes
// hard failures through for the command layer to surface.
func (pp *PrettyPrint) Outcome(err error) error {
	switch undoredo.Classify(err) {
	case undoredo.SeverityNone:
		return nil
	case undoredo.SeverityBusy:
		pp.Warn("another operation is in progress; try again")
		return nil
	case undoredo.SeverityWarning:
		pp.Warn("history could not be saved; the change was rolled back")
		return nil
	case undoredo.SeverityInconsistent:
		pp.Warn("history could not be saved and the rollback failed; state may be inconsistent")
		return err
	default:
		return err
	}
}

// Warn prints a soft warning, used when an action applied but could not be
// saved durably.
func (pp *PrettyPrint) Warn(msg string) {
	w := color.New(color.FgHiYellow)
	_, _ = w.Fprintf(color.Error, "warning: %s\n", msg)
}

func pad(id string) string {
	if len(id) >= len(spacing) {
		return id[:len(spacing)-2] + "  "
	}
	return id + strings.Repeat(" ", len(spacing)-len(id))
}
