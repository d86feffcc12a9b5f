// ABOUTME: In-memory record store used for demos and tests
// ABOUTME: Keeps each collection newest-first in a mutex-guarded slice
package db

import (
	"context"
	"sync"

	"github.com/harperreed/dealboard/models"
)

// MemoryStore implements RecordStore without persistence.
type MemoryStore struct {
	mu         sync.RWMutex
	seq        map[string]int64
	contacts   []models.Contact
	deals      []models.Deal
	tasks      []models.Task
	activities []models.Activity
	quotes     []models.Quote
}

var _ RecordStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seq: make(map[string]int64)}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) nextID(entity string) int64 {
	m.seq[entity]++
	return m.seq[entity]
}

func find[T any](items []T, id int64, idOf func(*T) int64) int {
	for i := range items {
		if idOf(&items[i]) == id {
			return i
		}
	}
	return -1
}

func prepend[T any](items []T, item T) []T {
	return append([]T{item}, items...)
}

func remove[T any](items []T, i int) []T {
	return append(items[:i:i], items[i+1:]...)
}

func contactKey(c *models.Contact) int64   { return c.ID }
func dealKey(d *models.Deal) int64         { return d.ID }
func taskKey(t *models.Task) int64         { return t.ID }
func activityKey(a *models.Activity) int64 { return a.ID }
func quoteKey(q *models.Quote) int64       { return q.ID }

// Contacts

func (m *MemoryStore) ListContacts(_ context.Context) ([]models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Contact(nil), m.contacts...), nil
}

func (m *MemoryStore) GetContact(_ context.Context, id int64) (*models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := find(m.contacts, id, contactKey)
	if i < 0 {
		return nil, &models.NotFoundError{Entity: "contact", ID: id}
	}
	c := m.contacts[i]
	return &c, nil
}

func (m *MemoryStore) CreateContact(_ context.Context, contact *models.Contact) error {
	if err := PrepareContact(contact); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	contact.ID = m.nextID("contact")
	m.contacts = prepend(m.contacts, *contact)
	return nil
}

func (m *MemoryStore) UpdateContact(_ context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.contacts, contact.ID, contactKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "contact", ID: contact.ID}
	}
	contact.CreatedAt = m.contacts[i].CreatedAt
	m.contacts[i] = *contact
	return nil
}

func (m *MemoryStore) DeleteContact(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.contacts, id, contactKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "contact", ID: id}
	}
	m.contacts = remove(m.contacts, i)
	return nil
}

// Deals

func (m *MemoryStore) ListDeals(_ context.Context) ([]models.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Deal(nil), m.deals...), nil
}

func (m *MemoryStore) GetDeal(_ context.Context, id int64) (*models.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := find(m.deals, id, dealKey)
	if i < 0 {
		return nil, &models.NotFoundError{Entity: "deal", ID: id}
	}
	d := m.deals[i]
	return &d, nil
}

func (m *MemoryStore) CreateDeal(_ context.Context, deal *models.Deal) error {
	if err := PrepareDeal(deal); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	deal.ID = m.nextID("deal")
	m.deals = prepend(m.deals, *deal)
	return nil
}

func (m *MemoryStore) UpdateDeal(_ context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.deals, id, dealKey)
	if i < 0 {
		return nil, &models.NotFoundError{Entity: "deal", ID: id}
	}
	merged, err := MergeDeal(m.deals[i], patch)
	if err != nil {
		return nil, err
	}
	m.deals[i] = merged
	return &merged, nil
}

func (m *MemoryStore) DeleteDeal(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.deals, id, dealKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "deal", ID: id}
	}
	m.deals = remove(m.deals, i)
	return nil
}

// Tasks

func (m *MemoryStore) ListTasks(_ context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Task(nil), m.tasks...), nil
}

func (m *MemoryStore) GetTask(_ context.Context, id int64) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := find(m.tasks, id, taskKey)
	if i < 0 {
		return nil, &models.NotFoundError{Entity: "task", ID: id}
	}
	t := m.tasks[i]
	return &t, nil
}

func (m *MemoryStore) CreateTask(_ context.Context, task *models.Task) error {
	if err := PrepareTask(task); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = m.nextID("task")
	m.tasks = prepend(m.tasks, *task)
	return nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.tasks, task.ID, taskKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "task", ID: task.ID}
	}
	task.CreatedAt = m.tasks[i].CreatedAt
	m.tasks[i] = *task
	return nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.tasks, id, taskKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "task", ID: id}
	}
	m.tasks = remove(m.tasks, i)
	return nil
}

// Activities

func (m *MemoryStore) ListActivities(_ context.Context) ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Activity(nil), m.activities...), nil
}

func (m *MemoryStore) GetActivity(_ context.Context, id int64) (*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := find(m.activities, id, activityKey)
	if i < 0 {
		return nil, &models.NotFoundError{Entity: "activity", ID: id}
	}
	a := m.activities[i]
	return &a, nil
}

func (m *MemoryStore) CreateActivity(_ context.Context, activity *models.Activity) error {
	if err := PrepareActivity(activity); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	activity.ID = m.nextID("activity")
	m.activities = prepend(m.activities, *activity)
	return nil
}

func (m *MemoryStore) UpdateActivity(_ context.Context, activity *models.Activity) error {
	if err := activity.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.activities, activity.ID, activityKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "activity", ID: activity.ID}
	}
	activity.CreatedAt = m.activities[i].CreatedAt
	m.activities[i] = *activity
	return nil
}

func (m *MemoryStore) DeleteActivity(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.activities, id, activityKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "activity", ID: id}
	}
	m.activities = remove(m.activities, i)
	return nil
}

// Quotes

func (m *MemoryStore) ListQuotes(_ context.Context) ([]models.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Quote(nil), m.quotes...), nil
}

func (m *MemoryStore) GetQuote(_ context.Context, id int64) (*models.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := find(m.quotes, id, quoteKey)
	if i < 0 {
		return nil, &models.NotFoundError{Entity: "quote", ID: id}
	}
	q := m.quotes[i]
	return &q, nil
}

func (m *MemoryStore) CreateQuote(_ context.Context, quote *models.Quote) error {
	if err := PrepareQuote(quote); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	quote.ID = m.nextID("quote")
	m.quotes = prepend(m.quotes, *quote)
	return nil
}

func (m *MemoryStore) UpdateQuote(_ context.Context, quote *models.Quote) error {
	if err := quote.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.quotes, quote.ID, quoteKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "quote", ID: quote.ID}
	}
	quote.CreatedAt = m.quotes[i].CreatedAt
	m.quotes[i] = *quote
	return nil
}

func (m *MemoryStore) DeleteQuote(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := find(m.quotes, id, quoteKey)
	if i < 0 {
		return &models.NotFoundError{Entity: "quote", ID: id}
	}
	m.quotes = remove(m.quotes, i)
	return nil
}
