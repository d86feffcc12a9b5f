// ABOUTME: Record store contract shared by the SQL, memory, and charm KV backends
// ABOUTME: Generic CRUD over contacts, deals, tasks, activities, and quotes keyed by int64 id
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealboard/models"
)

type ContactStore interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	CreateContact(ctx context.Context, contact *models.Contact) error
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, id int64) error
}

// DealStore updates deals by merging a patch into the stored record and
// returns the full record as stored.
type DealStore interface {
	ListDeals(ctx context.Context) ([]models.Deal, error)
	GetDeal(ctx context.Context, id int64) (*models.Deal, error)
	CreateDeal(ctx context.Context, deal *models.Deal) error
	UpdateDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error)
	DeleteDeal(ctx context.Context, id int64) error
}

type TaskStore interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
}

type ActivityStore interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	GetActivity(ctx context.Context, id int64) (*models.Activity, error)
	CreateActivity(ctx context.Context, activity *models.Activity) error
	UpdateActivity(ctx context.Context, activity *models.Activity) error
	DeleteActivity(ctx context.Context, id int64) error
}

type QuoteStore interface {
	ListQuotes(ctx context.Context) ([]models.Quote, error)
	GetQuote(ctx context.Context, id int64) (*models.Quote, error)
	CreateQuote(ctx context.Context, quote *models.Quote) error
	UpdateQuote(ctx context.Context, quote *models.Quote) error
	DeleteQuote(ctx context.Context, id int64) error
}

// RecordStore is everything the application reads and writes. Lists come back
// newest first. Missing ids yield *models.NotFoundError and rejected records
// yield models.ValidationErrors.
type RecordStore interface {
	ContactStore
	DealStore
	TaskStore
	ActivityStore
	QuoteStore
	Close() error
}

// ToggleTask flips a task between completed and pending and saves it.
func ToggleTask(ctx context.Context, store TaskStore, id int64) (*models.Task, error) {
	task, err := store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	task.ToggleComplete()
	if err := store.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	return task, nil
}

// PrepareContact and the other Prepare helpers run the create-time steps
// every backend applies before assigning an id.
func PrepareContact(c *models.Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return c.Validate()
}

func PrepareDeal(d *models.Deal) error {
	d.ApplyDefaults()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	return d.Validate()
}

func PrepareTask(t *models.Task) error {
	t.ApplyDefaults()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return t.Validate()
}

func PrepareActivity(a *models.Activity) error {
	a.ApplyDefaults()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return a.Validate()
}

func PrepareQuote(q *models.Quote) error {
	q.ApplyDefaults()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	return q.Validate()
}

// MergeDeal applies a patch and validates the result without saving it.
func MergeDeal(current models.Deal, patch models.DealPatch) (models.Deal, error) {
	merged := patch.Apply(current)
	if err := merged.Validate(); err != nil {
		return current, err
	}
	return merged, nil
}
