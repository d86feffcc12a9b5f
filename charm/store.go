// ABOUTME: Record store on top of the charm KV client
// ABOUTME: Records are JSON values under entity:id keys with a per-entity id sequence

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
)

const (
	entityContact  = "contact"
	entityDeal     = "deal"
	entityTask     = "task"
	entityActivity = "activity"
	entityQuote    = "quote"
)

// Store implements db.RecordStore on a charm KV client.
type Store struct {
	client *Client
	mu     sync.Mutex
}

var _ db.RecordStore = (*Store)(nil)

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func recordKey(entity string, id int64) []byte {
	return []byte(entity + ":" + strconv.FormatInt(id, 10))
}

func seqKey(entity string) []byte {
	return []byte("seq:" + entity)
}

// nextID must be called with s.mu held.
func (s *Store) nextID(entity string) (int64, error) {
	var current int64
	raw, err := s.client.Get(seqKey(entity))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, fmt.Errorf("failed to read %s sequence: %w", entity, err)
	default:
		current, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt %s sequence: %w", entity, err)
		}
	}

	next := current + 1
	if err := s.client.Set(seqKey(entity), []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", entity, err)
	}
	return next, nil
}

func getRecord[T any](c *Client, entity string, id int64) (*T, error) {
	raw, err := c.Get(recordKey(entity, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &models.NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", entity, err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", entity, id, err)
	}
	return &v, nil
}

func putRecord[T any](c *Client, entity string, id int64, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", entity, err)
	}
	if err := c.Set(recordKey(entity, id), raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", entity, err)
	}
	return nil
}

// listRecords decodes every record of an entity, newest id first.
func listRecords[T any](c *Client, entity string, idOf func(*T) int64) ([]T, error) {
	keys, err := c.KeysWithPrefix([]byte(entity + ":"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s keys: %w", entity, err)
	}

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		raw, err := c.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", k, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", k, err)
		}
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool { return idOf(&out[i]) > idOf(&out[j]) })
	return out, nil
}

func (s *Store) exists(entity string, id int64) error {
	_, err := s.client.Get(recordKey(entity, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

func (s *Store) remove(entity string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.exists(entity, id); err != nil {
		return err
	}
	return s.client.Delete(recordKey(entity, id))
}

// Contacts

func (s *Store) ListContacts(_ context.Context) ([]models.Contact, error) {
	return listRecords(s.client, entityContact, func(c *models.Contact) int64 { return c.ID })
}

func (s *Store) GetContact(_ context.Context, id int64) (*models.Contact, error) {
	return getRecord[models.Contact](s.client, entityContact, id)
}

func (s *Store) CreateContact(_ context.Context, contact *models.Contact) error {
	if err := db.PrepareContact(contact); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextID(entityContact)
	if err != nil {
		return err
	}
	contact.ID = id
	return putRecord(s.client, entityContact, id, contact)
}

func (s *Store) UpdateContact(_ context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := getRecord[models.Contact](s.client, entityContact, contact.ID)
	if err != nil {
		return err
	}
	contact.CreatedAt = current.CreatedAt
	return putRecord(s.client, entityContact, contact.ID, contact)
}

func (s *Store) DeleteContact(_ context.Context, id int64) error {
	return s.remove(entityContact, id)
}

// Deals

func (s *Store) ListDeals(_ context.Context) ([]models.Deal, error) {
	return listRecords(s.client, entityDeal, func(d *models.Deal) int64 { return d.ID })
}

func (s *Store) GetDeal(_ context.Context, id int64) (*models.Deal, error) {
	return getRecord[models.Deal](s.client, entityDeal, id)
}

func (s *Store) CreateDeal(_ context.Context, deal *models.Deal) error {
	if err := db.PrepareDeal(deal); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextID(entityDeal)
	if err != nil {
		return err
	}
	deal.ID = id
	return putRecord(s.client, entityDeal, id, deal)
}

func (s *Store) UpdateDeal(_ context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := getRecord[models.Deal](s.client, entityDeal, id)
	if err != nil {
		return nil, err
	}
	merged, err := db.MergeDeal(*current, patch)
	if err != nil {
		return nil, err
	}
	if err := putRecord(s.client, entityDeal, id, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *Store) DeleteDeal(_ context.Context, id int64) error {
	return s.remove(entityDeal, id)
}

// Tasks

func (s *Store) ListTasks(_ context.Context) ([]models.Task, error) {
	return listRecords(s.client, entityTask, func(t *models.Task) int64 { return t.ID })
}

func (s *Store) GetTask(_ context.Context, id int64) (*models.Task, error) {
	return getRecord[models.Task](s.client, entityTask, id)
}

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	if err := db.PrepareTask(task); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextID(entityTask)
	if err != nil {
		return err
	}
	task.ID = id
	return putRecord(s.client, entityTask, id, task)
}

func (s *Store) UpdateTask(_ context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := getRecord[models.Task](s.client, entityTask, task.ID)
	if err != nil {
		return err
	}
	task.CreatedAt = current.CreatedAt
	return putRecord(s.client, entityTask, task.ID, task)
}

func (s *Store) DeleteTask(_ context.Context, id int64) error {
	return s.remove(entityTask, id)
}

// Activities

func (s *Store) ListActivities(_ context.Context) ([]models.Activity, error) {
	return listRecords(s.client, entityActivity, func(a *models.Activity) int64 { return a.ID })
}

func (s *Store) GetActivity(_ context.Context, id int64) (*models.Activity, error) {
	return getRecord[models.Activity](s.client, entityActivity, id)
}

func (s *Store) CreateActivity(_ context.Context, activity *models.Activity) error {
	if err := db.PrepareActivity(activity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextID(entityActivity)
	if err != nil {
		return err
	}
	activity.ID = id
	return putRecord(s.client, entityActivity, id, activity)
}

func (s *Store) UpdateActivity(_ context.Context, activity *models.Activity) error {
	if err := activity.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := getRecord[models.Activity](s.client, entityActivity, activity.ID)
	if err != nil {
		return err
	}
	activity.CreatedAt = current.CreatedAt
	return putRecord(s.client, entityActivity, activity.ID, activity)
}

func (s *Store) DeleteActivity(_ context.Context, id int64) error {
	return s.remove(entityActivity, id)
}

// Quotes

func (s *Store) ListQuotes(_ context.Context) ([]models.Quote, error) {
	return listRecords(s.client, entityQuote, func(q *models.Quote) int64 { return q.ID })
}

func (s *Store) GetQuote(_ context.Context, id int64) (*models.Quote, error) {
	return getRecord[models.Quote](s.client, entityQuote, id)
}

func (s *Store) CreateQuote(_ context.Context, quote *models.Quote) error {
	if err := db.PrepareQuote(quote); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextID(entityQuote)
	if err != nil {
		return err
	}
	quote.ID = id
	return putRecord(s.client, entityQuote, id, quote)
}

func (s *Store) UpdateQuote(_ context.Context, quote *models.Quote) error {
	if err := quote.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := getRecord[models.Quote](s.client, entityQuote, quote.ID)
	if err != nil {
		return err
	}
	quote.CreatedAt = current.CreatedAt
	return putRecord(s.client, entityQuote, quote.ID, quote)
}

func (s *Store) DeleteQuote(_ context.Context, id int64) error {
	return s.remove(entityQuote, id)
}
