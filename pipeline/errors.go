// ABOUTME: Errors returned by the drag controller and board
// ABOUTME: TransitionError wraps a store rejection with the attempted move
package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStage   = errors.New("invalid stage")
	ErrDragInProgress = errors.New("drag already in progress")
	ErrNotDragging    = errors.New("no drag in progress")
)

// TransitionError reports a stage change the record store refused.
type TransitionError struct {
	DealID int64
	From   string
	To     string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("failed to move deal %d from %s to %s: %v", e.DealID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
