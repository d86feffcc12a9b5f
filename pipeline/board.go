// ABOUTME: Pipeline board state: the loaded deal and contact collections and their edits
// ABOUTME: Applies every change only after the record store confirms it, one at a time per deal
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealboard/models"
)

// Store is the part of the record store the board needs.
type Store interface {
	ListDeals(ctx context.Context) ([]models.Deal, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	CreateDeal(ctx context.Context, deal *models.Deal) error
	UpdateDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error)
	DeleteDeal(ctx context.Context, id int64) error
}

// UnknownStage is the source stage reported for deals the board has not loaded.
const UnknownStage = "unknown"

// TransitionObserver is told about every attempted stage change.
type TransitionObserver func(from, to string, err error)

// Board owns the deal collection for one session. Readers get copies; every
// write goes through the store first.
type Board struct {
	store  Store
	logger *log.Logger
	stages []models.Stage

	mu       sync.RWMutex
	deals    []models.Deal
	contacts map[int64]models.Contact

	locks     *keyedMutex
	onEdited  func(models.Deal)
	onDeleted func(int64)
	onMove    TransitionObserver
}

type Option func(*Board)

func WithLogger(l *log.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// OnDealEdited registers the callback fired after a stage move or edit is stored.
func OnDealEdited(fn func(models.Deal)) Option {
	return func(b *Board) { b.onEdited = fn }
}

// OnDealDeleted registers the callback fired after a delete is stored.
func OnDealDeleted(fn func(id int64)) Option {
	return func(b *Board) { b.onDeleted = fn }
}

func WithTransitionObserver(fn TransitionObserver) Option {
	return func(b *Board) { b.onMove = fn }
}

func NewBoard(store Store, opts ...Option) *Board {
	b := &Board{
		store:    store,
		stages:   models.Stages(),
		contacts: make(map[int64]models.Contact),
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

// Load replaces the board contents with what the store holds now.
func (b *Board) Load(ctx context.Context) error {
	deals, err := b.store.ListDeals(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}
	contacts, err := b.store.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	byID := make(map[int64]models.Contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}

	for _, d := range deals {
		b.checkIntegrity(d, contactKnown(byID, d.ContactID))
	}

	b.mu.Lock()
	b.deals = deals
	b.contacts = byID
	b.mu.Unlock()

	b.logger.Debug("board loaded", "deals", len(deals), "contacts", len(contacts))
	return nil
}

// checkIntegrity logs deals the board can only render degraded. The contact
// lookup is resolved by the caller while it still owns the map.
func (b *Board) checkIntegrity(d models.Deal, hasContact bool) {
	if !models.IsValidStage(d.Stage) {
		b.logger.Warn("deal has unknown stage, hiding it from the board", "deal", d.ID, "stage", d.Stage)
	}
	if d.ContactID != nil && !hasContact {
		b.logger.Warn("deal references missing contact", "deal", d.ID, "contact", *d.ContactID)
	}
}

func contactKnown(contacts map[int64]models.Contact, id *int64) bool {
	if id == nil {
		return false
	}
	_, ok := contacts[*id]
	return ok
}

func (b *Board) Stages() []models.Stage {
	out := make([]models.Stage, len(b.stages))
	copy(out, b.stages)
	return out
}

// Deals returns a copy of the collection in its current order.
func (b *Board) Deals() []models.Deal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Deal(nil), b.deals...)
}

func (b *Board) Deal(id int64) (models.Deal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexOf(id)
	if i < 0 {
		return models.Deal{}, false
	}
	return b.deals[i], true
}

// Contact resolves a weak contact reference.
func (b *Board) Contact(id *int64) (models.Contact, bool) {
	if id == nil {
		return models.Contact{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.contacts[*id]
	return c, ok
}

func (b *Board) Contacts() map[int64]models.Contact {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[int64]models.Contact, len(b.contacts))
	for k, v := range b.contacts {
		out[k] = v
	}
	return out
}

// Groups recomputes the stage groups from the current collection.
func (b *Board) Groups() []StageGroup {
	return GroupByStages(b.stages, b.Deals())
}

// Unmatched returns deals whose stage is not on the board.
func (b *Board) Unmatched() []models.Deal {
	_, unmatched := Partition(b.stages, b.Deals())
	return unmatched
}

// NewController returns a drag controller that dispatches moves to this board.
func (b *Board) NewController() *Controller {
	return NewController(b)
}

// MoveDeal changes a deal's stage. Only the stage is sent to the store. The
// local copy changes after the store accepts; a rejection leaves it as it was.
func (b *Board) MoveDeal(ctx context.Context, id int64, stage string) (*models.Deal, error) {
	if !models.IsValidStage(stage) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}

	unlock, err := b.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, known := b.Deal(id)
	if known && current.Stage == stage {
		return &current, nil
	}
	from := b.fromStage(current, known)

	updated, err := b.store.UpdateDeal(ctx, id, models.StagePatch(stage))
	b.observe(from, stage, err)
	if err != nil {
		b.logger.Warn("stage change rejected", "deal", id, "from", from, "to", stage, "err", err)
		return nil, &TransitionError{DealID: id, From: from, To: stage, Err: err}
	}

	b.logger.Info("deal moved", "deal", id, "from", from, "to", updated.Stage)
	b.apply(*updated)
	return updated, nil
}

// EditDeal merges a form edit into a deal with the same confirm-then-apply rule.
func (b *Board) EditDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	if patch.Stage != nil && !models.IsValidStage(*patch.Stage) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, *patch.Stage)
	}

	unlock, err := b.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, known := b.Deal(id)

	updated, err := b.store.UpdateDeal(ctx, id, patch)
	if patch.Stage != nil && (!known || *patch.Stage != current.Stage) {
		b.observe(b.fromStage(current, known), *patch.Stage, err)
	}
	if err != nil {
		b.logger.Warn("deal edit rejected", "deal", id, "fields", patch.Fields(), "err", err)
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	b.apply(*updated)
	return updated, nil
}

// CreateDeal stores a new deal and puts it at the front of the collection.
func (b *Board) CreateDeal(ctx context.Context, deal *models.Deal) error {
	if err := b.store.CreateDeal(ctx, deal); err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	b.mu.Lock()
	b.deals = append([]models.Deal{*deal}, b.deals...)
	b.mu.Unlock()

	b.logger.Info("deal created", "deal", deal.ID, "stage", deal.Stage)
	return nil
}

// DeleteDeal removes a deal once the store has deleted it.
func (b *Board) DeleteDeal(ctx context.Context, id int64) error {
	unlock, err := b.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := b.store.DeleteDeal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	b.Remove(id)
	b.logger.Info("deal deleted", "deal", id)
	if b.onDeleted != nil {
		b.onDeleted(id)
	}
	return nil
}

// Upsert folds in a deal changed elsewhere, replacing it in place or
// prepending it when new. It does not touch the store.
func (b *Board) Upsert(deal models.Deal) {
	b.mu.Lock()
	if i := b.indexOf(deal.ID); i >= 0 {
		b.deals[i] = deal
	} else {
		b.deals = append([]models.Deal{deal}, b.deals...)
	}
	hasContact := contactKnown(b.contacts, deal.ContactID)
	b.mu.Unlock()

	b.checkIntegrity(deal, hasContact)
}

// Remove drops a deal from the collection without touching the store.
func (b *Board) Remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		b.deals = append(b.deals[:i:i], b.deals[i+1:]...)
	}
}

// UpsertContact keeps the contact lookup current.
func (b *Board) UpsertContact(c models.Contact) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contacts[c.ID] = c
}

func (b *Board) RemoveContact(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.contacts, id)
}

func (b *Board) apply(updated models.Deal) {
	b.Upsert(updated)
	if b.onEdited != nil {
		b.onEdited(updated)
	}
}

// fromStage names the source stage of a transition. Deals the board has not
// loaded report UnknownStage so metrics and errors never carry an empty label.
func (b *Board) fromStage(current models.Deal, known bool) string {
	if !known || current.Stage == "" {
		return UnknownStage
	}
	return current.Stage
}

func (b *Board) observe(from, to string, err error) {
	if b.onMove != nil {
		b.onMove(from, to, err)
	}
}

// indexOf must be called with b.mu held.
func (b *Board) indexOf(id int64) int {
	for i := range b.deals {
		if b.deals[i].ID == id {
			return i
		}
	}
	return -1
}
