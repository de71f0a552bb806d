package undoredo

import (
	"errors"

	"tableflip.dev/daybook/pkg/history"
)

// Severity classifies engine failures for display: a hard error means the
// action did not happen; a warning means it happened but may not survive a
// reload; inconsistent means even the compensating rollback failed.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityBusy
	SeverityWarning
	SeverityInconsistent
	SeverityError
)

// Classify maps an error returned by the session to its display severity.
// Nothing here is retried automatically; every retry is a fresh user action.
func Classify(err error) Severity {
	if err == nil {
		return SeverityNone
	}
	if errors.Is(err, history.ErrBusy) {
		return SeverityBusy
	}
	var perr *history.PersistenceError
	if errors.As(err, &perr) {
		if perr.Outcome == history.RollbackFailed {
			return SeverityInconsistent
		}
		return SeverityWarning
	}
	return SeverityError
}
