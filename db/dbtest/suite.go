// ABOUTME: Shared behaviour tests every record store backend must pass
// ABOUTME: Imported by the SQL, memory, and charm KV store tests
package dbtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) db.RecordStore

// RunRecordStoreSuite exercises the full RecordStore contract.
func RunRecordStoreSuite(t *testing.T, newStore Factory) {
	t.Run("Contacts", func(t *testing.T) { testContacts(t, newStore(t)) })
	t.Run("Deals", func(t *testing.T) { testDeals(t, newStore(t)) })
	t.Run("DealMergeUpdate", func(t *testing.T) { testDealMergeUpdate(t, newStore(t)) })
	t.Run("DealRejectedUpdate", func(t *testing.T) { testDealRejectedUpdate(t, newStore(t)) })
	t.Run("WeakContactReference", func(t *testing.T) { testWeakContactReference(t, newStore(t)) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("Activities", func(t *testing.T) { testActivities(t, newStore(t)) })
	t.Run("Quotes", func(t *testing.T) { testQuotes(t, newStore(t)) })
}

func newContact(first string) *models.Contact {
	return &models.Contact{
		FirstName: first,
		LastName:  "Tester",
		Email:     first + "@example.com",
		Phone:     "555-0100",
		Company:   "Acme",
	}
}

func testContacts(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	first := newContact("alice")
	require.NoError(t, store.CreateContact(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := newContact("bob")
	require.NoError(t, store.CreateContact(ctx, second))

	list, err := store.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "contacts should list newest first")

	got, err := store.GetContact(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Acme", got.Company)

	got.Position = "Buyer"
	require.NoError(t, store.UpdateContact(ctx, got))
	got, err = store.GetContact(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buyer", got.Position)

	err = store.CreateContact(ctx, &models.Contact{FirstName: "x"})
	assert.True(t, errors.Is(err, models.ErrValidation), "expected validation error, got %v", err)

	require.NoError(t, store.DeleteContact(ctx, first.ID))
	_, err = store.GetContact(ctx, first.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound), "expected not found, got %v", err)
	assert.True(t, errors.Is(store.DeleteContact(ctx, first.ID), models.ErrNotFound))
}

func testDeals(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	deal := &models.Deal{Title: "Pilot", Value: 1000}
	require.NoError(t, store.CreateDeal(ctx, deal))
	assert.NotZero(t, deal.ID)
	assert.Equal(t, models.StageLead, deal.Stage)
	assert.Zero(t, deal.Probability, "the store keeps a zero probability")

	closeDate := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)
	other := &models.Deal{Title: "Renewal", Value: 500, Stage: models.StageProposal, Probability: 60, ExpectedCloseDate: &closeDate}
	require.NoError(t, store.CreateDeal(ctx, other))

	deals, err := store.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, other.ID, deals[0].ID)
	require.NotNil(t, deals[0].ExpectedCloseDate)
	assert.True(t, deals[0].ExpectedCloseDate.Equal(closeDate))

	err = store.CreateDeal(ctx, &models.Deal{Title: "Bad", Stage: "archived"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	require.NoError(t, store.DeleteDeal(ctx, deal.ID))
	_, err = store.GetDeal(ctx, deal.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func testDealMergeUpdate(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	contact := newContact("carol")
	require.NoError(t, store.CreateContact(ctx, contact))

	deal := &models.Deal{
		Title:       "Website redesign",
		Value:       1000,
		Stage:       models.StageLead,
		Probability: 25,
		ContactID:   &contact.ID,
		Description: "phase one",
	}
	require.NoError(t, store.CreateDeal(ctx, deal))

	updated, err := store.UpdateDeal(ctx, deal.ID, models.StagePatch(models.StageQualified))
	require.NoError(t, err)
	assert.Equal(t, models.StageQualified, updated.Stage)
	assert.Equal(t, "Website redesign", updated.Title)
	assert.Equal(t, 1000.0, updated.Value)
	assert.Equal(t, 25, updated.Probability)
	assert.Equal(t, "phase one", updated.Description)
	require.NotNil(t, updated.ContactID)
	assert.Equal(t, contact.ID, *updated.ContactID)

	stored, err := store.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageQualified, stored.Stage)
	assert.Equal(t, 1000.0, stored.Value)

	_, err = store.UpdateDeal(ctx, 99999, models.StagePatch(models.StageProposal))
	assert.True(t, errors.Is(err, models.ErrNotFound), "expected not found, got %v", err)
}

func testDealRejectedUpdate(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	deal := &models.Deal{Title: "Keep me", Value: 10, Stage: models.StageProposal, Probability: 50}
	require.NoError(t, store.CreateDeal(ctx, deal))

	_, err := store.UpdateDeal(ctx, deal.ID, models.StagePatch("won"))
	assert.True(t, errors.Is(err, models.ErrValidation), "expected validation error, got %v", err)

	negative := -5.0
	_, err = store.UpdateDeal(ctx, deal.ID, models.DealPatch{Value: &negative})
	assert.True(t, errors.Is(err, models.ErrValidation))

	stored, err := store.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, stored.Stage)
	assert.Equal(t, 10.0, stored.Value)
}

func testWeakContactReference(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	contact := newContact("dave")
	require.NoError(t, store.CreateContact(ctx, contact))

	deal := &models.Deal{Title: "Orphan", ContactID: &contact.ID}
	require.NoError(t, store.CreateDeal(ctx, deal))

	require.NoError(t, store.DeleteContact(ctx, contact.ID))

	stored, err := store.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ContactID, "deleting a contact must not cascade into deals")
	assert.Equal(t, contact.ID, *stored.ContactID)
}

func testTasks(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	task := &models.Task{Title: "Follow up", DueDate: time.Now().Add(48 * time.Hour)}
	require.NoError(t, store.CreateTask(ctx, task))
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.TaskPending, task.Status)

	toggled, err := db.ToggleTask(ctx, store, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, toggled.Status)

	stored, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, stored.Status)

	_, err = db.ToggleTask(ctx, store, 424242)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	err = store.CreateTask(ctx, &models.Task{Title: "No date"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	require.NoError(t, store.DeleteTask(ctx, task.ID))
	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func testActivities(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	dealID := int64(7)
	a := &models.Activity{Subject: "Intro", Description: "First call", DealID: &dealID}
	require.NoError(t, store.CreateActivity(ctx, a))
	assert.Equal(t, models.ActivityCall, a.Type)

	b := &models.Activity{Type: models.ActivityNote, Subject: "Note", Description: "Budget approved"}
	require.NoError(t, store.CreateActivity(ctx, b))

	list, err := store.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	require.NotNil(t, list[1].DealID)
	assert.Equal(t, dealID, *list[1].DealID)

	b.Subject = "Updated note"
	require.NoError(t, store.UpdateActivity(ctx, b))
	got, err := store.GetActivity(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated note", got.Subject)

	require.NoError(t, store.DeleteActivity(ctx, a.ID))
	_, err = store.GetActivity(ctx, a.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func testQuotes(t *testing.T, store db.RecordStore) {
	ctx := context.Background()

	quoteDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	q := &models.Quote{
		Company:        "Acme",
		ContactID:      1,
		DealID:         2,
		QuoteDate:      quoteDate,
		ExpiresOn:      quoteDate.AddDate(0, 0, 30),
		BillingAddress: models.Address{Street: "1 Main St", City: "Springfield", Country: "US"},
	}
	require.NoError(t, store.CreateQuote(ctx, q))
	assert.Equal(t, models.QuoteDraft, q.Status)
	assert.Equal(t, models.DeliveryEmail, q.DeliveryMethod)

	got, err := store.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got.BillingAddress.City)
	assert.True(t, got.ShippingAddress.IsZero())
	assert.True(t, got.ExpiresOn.Equal(quoteDate.AddDate(0, 0, 30)))

	got.Status = models.QuoteSent
	got.ShippingAddress = models.Address{City: "Shelbyville"}
	require.NoError(t, store.UpdateQuote(ctx, got))

	list, err := store.ListQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.QuoteSent, list[0].Status)
	assert.Equal(t, "Shelbyville", list[0].ShippingAddress.City)

	bad := *got
	bad.ID = 0
	bad.ExpiresOn = bad.QuoteDate
	assert.True(t, errors.Is(store.CreateQuote(ctx, &bad), models.ErrValidation))

	require.NoError(t, store.DeleteQuote(ctx, q.ID))
	assert.True(t, errors.Is(store.DeleteQuote(ctx, q.ID), models.ErrNotFound))
}
