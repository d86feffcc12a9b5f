// ABOUTME: Tests for the shared task, activity, and quote list filters and tool schemas
// ABOUTME: Covers search fields, choice validation, and the enum values offered to MCP clients
package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestFilterTasks(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Title: "Send proposal", Description: "pricing for Northwind", Status: models.TaskPending, DealID: int64Ptr(3)},
		{ID: 2, Title: "Call back", Description: "about the PROPOSAL", Status: models.TaskCompleted},
		{ID: 3, Title: "Book venue", Status: models.TaskInProgress},
	}

	tests := []struct {
		name   string
		filter TaskFilter
		want   []int64
	}{
		{"everything", TaskFilter{}, []int64{1, 2, 3}},
		{"title or description", TaskFilter{Query: "proposal"}, []int64{1, 2}},
		{"status", TaskFilter{Status: models.TaskCompleted}, []int64{2}},
		{"status and search", TaskFilter{Status: models.TaskPending, Query: "northwind"}, []int64{1}},
		{"open only", TaskFilter{OpenOnly: true}, []int64{1, 3}},
		{"deal", TaskFilter{DealID: 3}, []int64{1}},
		{"no match", TaskFilter{Query: "zebra"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, task := range FilterTasks(tasks, tt.filter) {
				got = append(got, task.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterActivities(t *testing.T) {
	activities := []models.Activity{
		{ID: 1, Type: models.ActivityCall, Subject: "Intro", Description: "discussed renewal", ContactID: int64Ptr(5)},
		{ID: 2, Type: models.ActivityEmail, Subject: "Renewal terms", Description: "sent draft"},
		{ID: 3, Type: models.ActivityMeeting, Subject: "Onsite", Description: "demo", DealID: int64Ptr(9)},
	}

	tests := []struct {
		name   string
		filter ActivityFilter
		want   []int64
	}{
		{"everything", ActivityFilter{}, []int64{1, 2, 3}},
		{"subject or description", ActivityFilter{Query: "RENEWAL"}, []int64{1, 2}},
		{"type", ActivityFilter{Type: models.ActivityEmail}, []int64{2}},
		{"type and search", ActivityFilter{Type: models.ActivityCall, Query: "renewal"}, []int64{1}},
		{"contact", ActivityFilter{ContactID: 5}, []int64{1}},
		{"deal", ActivityFilter{DealID: 9}, []int64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, a := range FilterActivities(activities, tt.filter) {
				got = append(got, a.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterQuotes(t *testing.T) {
	contacts := ContactIndex([]models.Contact{{ID: 1, FirstName: "Sarah", LastName: "Chen"}})
	quotes := []models.Quote{
		{ID: 1, Company: "Northwind", ContactID: 1, DealID: 2, Status: models.QuoteDraft},
		{ID: 2, Company: "Brightline", ContactID: 7, DealID: 4, Status: models.QuoteAccepted},
	}

	tests := []struct {
		name   string
		filter QuoteFilter
		want   []int64
	}{
		{"company", QuoteFilter{Query: "bright"}, []int64{2}},
		{"status text", QuoteFilter{Query: "draft"}, []int64{1}},
		{"contact name", QuoteFilter{Query: "sarah chen"}, []int64{1}},
		{"missing contact still matches company", QuoteFilter{Query: "brightline"}, []int64{2}},
		{"status", QuoteFilter{Status: models.QuoteAccepted}, []int64{2}},
		{"deal", QuoteFilter{DealID: 2}, []int64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, q := range FilterQuotes(quotes, contacts, tt.filter) {
				got = append(got, q.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterValidateChoices(t *testing.T) {
	assert.NoError(t, TaskFilter{}.Validate())
	assert.NoError(t, TaskFilter{Status: models.TaskCancelled}.Validate())

	err := TaskFilter{Status: "done"}.Validate()
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "pending, in-progress, completed, cancelled")

	assert.ErrorIs(t, ActivityFilter{Type: "sms"}.Validate(), models.ErrValidation)
	assert.ErrorIs(t, QuoteFilter{Status: "draft"}.Validate(), models.ErrValidation, "quote statuses are case-sensitive")
}

func TestListToolsSearch(t *testing.T) {
	store, _ := setupBoard(t)
	ctx := context.Background()
	sarah := addContact(t, store, "Sarah", "Chen", "Northwind")

	tasks := NewTaskHandlers(store)
	_, _, err := tasks.AddTask(ctx, nil, AddTaskInput{Title: "Send proposal", DueDate: "2026-05-01"})
	require.NoError(t, err)
	_, _, err = tasks.AddTask(ctx, nil, AddTaskInput{Title: "Book venue", Description: "proposal dinner", DueDate: "2026-05-02", Status: models.TaskInProgress})
	require.NoError(t, err)
	_, _, err = tasks.AddTask(ctx, nil, AddTaskInput{Title: "Expense report", DueDate: "2026-05-03"})
	require.NoError(t, err)

	_, taskList, err := tasks.ListTasks(ctx, nil, ListTasksInput{Query: "proposal"})
	require.NoError(t, err)
	assert.Equal(t, 2, taskList.Count)
	_, taskList, err = tasks.ListTasks(ctx, nil, ListTasksInput{Query: "proposal", Status: models.TaskInProgress})
	require.NoError(t, err)
	require.Equal(t, 1, taskList.Count)
	assert.Equal(t, "Book venue", taskList.Tasks[0].Title)
	_, _, err = tasks.ListTasks(ctx, nil, ListTasksInput{Status: "finished"})
	assert.ErrorIs(t, err, models.ErrValidation)

	activities := NewActivityHandlers(store)
	activities.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	_, _, err = activities.LogActivity(ctx, nil, LogActivityInput{Type: models.ActivityEmail, Subject: "Pricing", Description: "sent the sheet", ContactID: sarah.ID})
	require.NoError(t, err)
	_, _, err = activities.LogActivity(ctx, nil, LogActivityInput{Type: models.ActivityCall, Subject: "Check in", Description: "asked about pricing"})
	require.NoError(t, err)

	_, actList, err := activities.ListActivities(ctx, nil, ListActivitiesInput{Query: "pricing"})
	require.NoError(t, err)
	assert.Equal(t, 2, actList.Count)
	_, actList, err = activities.ListActivities(ctx, nil, ListActivitiesInput{Type: models.ActivityCall})
	require.NoError(t, err)
	require.Equal(t, 1, actList.Count)
	assert.Equal(t, "Check in", actList.Activities[0].Subject)
	_, _, err = activities.ListActivities(ctx, nil, ListActivitiesInput{Type: "fax"})
	assert.ErrorIs(t, err, models.ErrValidation)

	quotes := NewQuoteHandlers(store)
	_, _, err = quotes.CreateQuote(ctx, nil, CreateQuoteInput{Company: "Acme", ContactID: sarah.ID, DealID: 1, QuoteDate: "2026-04-01", ExpiresOn: "2026-05-01"})
	require.NoError(t, err)
	_, _, err = quotes.CreateQuote(ctx, nil, CreateQuoteInput{Company: "Brightline", ContactID: 99, DealID: 2, QuoteDate: "2026-04-01", ExpiresOn: "2026-05-01", Status: models.QuoteSent})
	require.NoError(t, err)

	_, quoteList, err := quotes.ListQuotes(ctx, nil, ListQuotesInput{Query: "chen"})
	require.NoError(t, err)
	require.Equal(t, 1, quoteList.Count)
	assert.Equal(t, "Acme", quoteList.Quotes[0].Company)
	_, quoteList, err = quotes.ListQuotes(ctx, nil, ListQuotesInput{Query: "sent"})
	require.NoError(t, err)
	require.Equal(t, 1, quoteList.Count)
	assert.Equal(t, "Brightline", quoteList.Quotes[0].Company)
}

func TestToolSchemasOfferAllowedValues(t *testing.T) {
	enum := func(values []string) []any {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = v
		}
		return out
	}

	addTask := AddTaskSchema()
	assert.Equal(t, enum(models.TaskPriorities()), addTask.Properties["priority"].Enum)
	assert.Equal(t, enum(models.TaskStatuses()), addTask.Properties["status"].Enum)
	assert.Contains(t, addTask.Properties["priority"].Description, "low, medium, high, urgent")
	assert.Nil(t, addTask.Properties["title"].Enum)

	assert.Equal(t, enum(models.TaskStatuses()), ListTasksSchema().Properties["status"].Enum)
	assert.Equal(t, enum(models.ActivityTypes()), LogActivitySchema().Properties["type"].Enum)
	assert.Equal(t, enum(models.ActivityTypes()), ListActivitiesSchema().Properties["type"].Enum)

	quote := CreateQuoteSchema()
	assert.Equal(t, enum(models.QuoteStatuses()), quote.Properties["status"].Enum)
	assert.Equal(t, enum(models.DeliveryMethods()), quote.Properties["delivery_method"].Enum)
	assert.Contains(t, quote.Properties["delivery_method"].Description, "In Person")
	assert.Equal(t, enum(models.QuoteStatuses()), ListQuotesSchema().Properties["status"].Enum)
}
