package history

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation is attempted while another command-
// affecting operation is in flight on the same manager. Nothing is queued;
// the caller retries explicitly.
var ErrBusy = errors.New("history: another operation is in progress")

// ExecutionError reports that a command's forward or inverse mutation itself
// failed. The stacks are left unchanged from before the attempt.
type ExecutionError struct {
	Op  string // "execute", "undo", or "redo"
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("history: %s failed: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// RollbackOutcome classifies the compensation attempted after a persistence
// failure.
type RollbackOutcome int

const (
	// RollbackOK means the in-memory mutation was reversed; visible state is
	// consistent, only durability was lost.
	RollbackOK RollbackOutcome = iota

	// RollbackFailed means the compensating mutation itself failed; the undo
	// stack may be inconsistent with on-screen state.
	RollbackFailed
)

func (o RollbackOutcome) String() string {
	switch o {
	case RollbackOK:
		return "rolled back"
	case RollbackFailed:
		return "rollback failed"
	default:
		return fmt.Sprintf("RollbackOutcome(%d)", int(o))
	}
}

// PersistenceError reports that a mutation succeeded but saving the history
// stacks did not. Outcome records whether the compensating rollback restored
// consistency; callers treat RollbackOK as a soft warning and RollbackFailed
// as a harder inconsistency warning.
type PersistenceError struct {
	Outcome     RollbackOutcome
	Err         error // the persistence failure
	RollbackErr error // non-nil iff Outcome is RollbackFailed
}

func (e *PersistenceError) Error() string {
	if e.Outcome == RollbackFailed {
		return fmt.Sprintf("history: persist failed (%v); rollback also failed: %v", e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("history: persist failed (%s): %v", e.Outcome, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
