// ABOUTME: Drag-transition controller turning a drag gesture into a stage change
// ABOUTME: Idle -> Dragging -> Dropped -> Idle, with a no-op guard for same-stage drops
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/harperreed/dealboard/models"
)

type State int

const (
	Idle State = iota
	Dragging
	Dropped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Outcome says what a drop did.
type Outcome int

const (
	// OutcomeIgnored means the drop target was not a board column.
	OutcomeIgnored Outcome = iota
	// OutcomeUnchanged means the deal was dropped back on its own column.
	OutcomeUnchanged
	OutcomeMoved
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeMoved:
		return "moved"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Dispatcher applies a stage change. Implementations send only the id and
// the new stage to the record store.
type Dispatcher interface {
	MoveDeal(ctx context.Context, id int64, stage string) (*models.Deal, error)
}

type DispatcherFunc func(ctx context.Context, id int64, stage string) (*models.Deal, error)

func (f DispatcherFunc) MoveDeal(ctx context.Context, id int64, stage string) (*models.Deal, error) {
	return f(ctx, id, stage)
}

type DropResult struct {
	Outcome Outcome
	DealID  int64
	From    string
	To      string
	// Deal is the record as stored after a successful move.
	Deal *models.Deal
}

// Controller holds the state of one drag gesture at a time.
type Controller struct {
	mu       sync.Mutex
	state    State
	payload  models.Deal
	dispatch Dispatcher
}

func NewController(d Dispatcher) *Controller {
	return &Controller{dispatch: d}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payload returns the deal snapshot being dragged.
func (c *Controller) Payload() (models.Deal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return models.Deal{}, false
	}
	return snapshot(c.payload), true
}

// Begin picks up a card. The deal is copied so later edits to the caller's
// value do not leak into the drop.
func (c *Controller) Begin(deal models.Deal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return ErrDragInProgress
	}
	c.state = Dragging
	c.payload = snapshot(deal)
	return nil
}

// Cancel abandons a drag without side effects.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Dragging {
		c.reset()
	}
}

// Drop releases the card over the column with the given stage id. An id that
// is not in the taxonomy counts as a drop outside every column.
func (c *Controller) Drop(ctx context.Context, stageID string) (DropResult, error) {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return DropResult{}, ErrNotDragging
	}

	deal := c.payload
	res := DropResult{DealID: deal.ID, From: deal.Stage, To: stageID}

	if !models.IsValidStage(stageID) {
		c.reset()
		c.mu.Unlock()
		res.Outcome = OutcomeIgnored
		return res, nil
	}

	if stageID == deal.Stage {
		c.reset()
		c.mu.Unlock()
		res.Outcome = OutcomeUnchanged
		return res, nil
	}

	c.state = Dropped
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
	}()

	updated, err := c.dispatch.MoveDeal(ctx, deal.ID, stageID)
	if err != nil {
		res.Outcome = OutcomeRejected
		var te *TransitionError
		if errors.As(err, &te) {
			return res, err
		}
		return res, &TransitionError{DealID: deal.ID, From: deal.Stage, To: stageID, Err: err}
	}

	res.Outcome = OutcomeMoved
	res.Deal = updated
	return res, nil
}

// reset must be called with c.mu held.
func (c *Controller) reset() {
	c.state = Idle
	c.payload = models.Deal{}
}

func snapshot(d models.Deal) models.Deal {
	if d.ContactID != nil {
		id := *d.ContactID
		d.ContactID = &id
	}
	if d.ExpectedCloseDate != nil {
		t := *d.ExpectedCloseDate
		d.ExpectedCloseDate = &t
	}
	return d
}
