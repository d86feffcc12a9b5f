// ABOUTME: Tests for the board web server
// ABOUTME: Exercises the page, JSON API, error mapping, and metrics through httptest
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/logging"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectingStore struct {
	*db.MemoryStore
}

func (s *rejectingStore) UpdateDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	return nil, errors.New("database is locked")
}

func setupServer(t *testing.T, store db.RecordStore) *httptest.Server {
	t.Helper()
	if store == nil {
		mem := db.NewMemoryStore()
		if err := db.SeedDemoData(context.Background(), mem); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
		store = mem
	}

	metrics := NewMetrics()
	board := pipeline.NewBoard(store, metrics.BoardOptions()...)
	srv, err := NewServer(store, board, logging.Discard(), metrics)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestBoardPage(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodGet, ts.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	for _, want := range []string{"Lead", "Closed Lost", "Warehouse analytics pilot", "$12,000", "Sarah Chen", "/api/board/moves"} {
		assert.Contains(t, page, want)
	}
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestBoardPageEmptyColumns(t *testing.T) {
	ts := setupServer(t, db.NewMemoryStore())

	resp, body := do(t, http.MethodGet, ts.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 6, strings.Count(string(body), "No deals in this stage"))
}

func TestGetBoard(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/board", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got boardResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Columns, 6)
	assert.Equal(t, models.StageLead, got.Columns[0].Stage.ID)
	assert.Equal(t, 1, got.Columns[0].Count)
	assert.Equal(t, 12000.0, got.Columns[0].TotalValue)
	assert.Equal(t, 6, got.Summary.Deals)
	assert.Equal(t, 144500.0, got.Summary.TotalValue)
}

func TestMoveDeal(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/board/moves", moveRequest{DealID: 1, Stage: models.StageQualified})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got moveResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "moved", got.Outcome)
	assert.Equal(t, models.StageLead, got.From)
	assert.Equal(t, models.StageQualified, got.To)
	require.NotNil(t, got.Deal)
	assert.Equal(t, models.StageQualified, got.Deal.Stage)

	_, body = do(t, http.MethodGet, ts.URL+"/api/deals/1", nil)
	var deal models.Deal
	require.NoError(t, json.Unmarshal(body, &deal))
	assert.Equal(t, models.StageQualified, deal.Stage)
	assert.Equal(t, 12000.0, deal.Value, "only the stage changes")

	_, body = do(t, http.MethodGet, ts.URL+"/metrics", nil)
	assert.Contains(t, string(body), `dealboard_stage_transitions_total{from="lead",result="accepted",to="qualified"} 1`)
}

func TestMoveDealSameStage(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/board/moves", moveRequest{DealID: 1, Stage: models.StageLead})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got moveResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "unchanged", got.Outcome)
}

func TestMoveDealErrors(t *testing.T) {
	ts := setupServer(t, nil)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/board/moves", moveRequest{DealID: 1, Stage: "won"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/board/moves", moveRequest{DealID: 99, Stage: models.StageProposal})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/board/moves", map[string]any{"deal": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMoveDealRejectedByStore(t *testing.T) {
	mem := db.NewMemoryStore()
	require.NoError(t, db.SeedDemoData(context.Background(), mem))
	ts := setupServer(t, &rejectingStore{MemoryStore: mem})

	resp, body := do(t, http.MethodPost, ts.URL+"/api/board/moves", moveRequest{DealID: 1, Stage: models.StageProposal})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got.Error, "database is locked")

	deal, err := mem.GetDeal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, deal.Stage)
}

func TestDealCRUD(t *testing.T) {
	ts := setupServer(t, db.NewMemoryStore())

	resp, body := do(t, http.MethodPost, ts.URL+"/api/deals", dealRequest{Title: "Kiosk order", Value: 4200, ExpectedCloseDate: "2026-12-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created models.Deal
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, models.StageLead, created.Stage)
	assert.Equal(t, models.DefaultProbability, created.Probability)

	resp, body = do(t, http.MethodPatch, ts.URL+"/api/deals/1", map[string]any{"value": 5000, "expected_close_date": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.Deal
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, 5000.0, updated.Value)
	assert.Equal(t, "Kiosk order", updated.Title)
	assert.Nil(t, updated.ExpectedCloseDate)

	resp, _ = do(t, http.MethodPatch, ts.URL+"/api/deals/1", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/deals", dealRequest{Value: 10})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/deals", map[string]any{"title": "Long shot", "probability": 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var longShot models.Deal
	require.NoError(t, json.Unmarshal(body, &longShot))
	assert.Zero(t, longShot.Probability, "an explicit zero is not replaced by the default")

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/deals/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = do(t, http.MethodGet, ts.URL+"/metrics", nil)
	metrics := string(body)
	assert.Contains(t, metrics, `dealboard_deal_changes_total{event="edited",stage="lead"} 1`)
	assert.Contains(t, metrics, `dealboard_deal_changes_total{event="deleted",stage="unknown"} 1`)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/deals/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/deals/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListDealsFilters(t *testing.T) {
	ts := setupServer(t, nil)

	_, body := do(t, http.MethodGet, ts.URL+"/api/deals?q=brightline", nil)
	var deals []models.Deal
	require.NoError(t, json.Unmarshal(body, &deals))
	assert.Len(t, deals, 2)

	_, body = do(t, http.MethodGet, ts.URL+"/api/deals?stage=closed-won", nil)
	require.NoError(t, json.Unmarshal(body, &deals))
	require.Len(t, deals, 1)
	assert.Equal(t, "Annual license renewal", deals[0].Title)
}

func TestContactsAndActivities(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/contacts", map[string]any{"first_name": "Ana"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.NotNil(t, errResp.Details)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/activities", activityRequest{Subject: "Check-in", Description: "Quick call", ContactID: ptr(int64(3))})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body = do(t, http.MethodGet, ts.URL+"/api/contacts?q=priya", nil)
	var contacts []models.Contact
	require.NoError(t, json.Unmarshal(body, &contacts))
	require.Len(t, contacts, 1)
	assert.NotNil(t, contacts[0].LastActivity)

	_, body = do(t, http.MethodGet, ts.URL+"/api/activities?contact=3", nil)
	var activities []models.Activity
	require.NoError(t, json.Unmarshal(body, &activities))
	assert.Len(t, activities, 1)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/contacts/3", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = do(t, http.MethodGet, ts.URL+"/api/deals/3", nil)
	var deal models.Deal
	require.NoError(t, json.Unmarshal(body, &deal))
	require.NotNil(t, deal.ContactID, "contact deletion does not cascade")
	assert.Equal(t, int64(3), *deal.ContactID)
}

func TestTasksAndQuotes(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/tasks", taskRequest{Title: "Draft contract", DueDate: "2026-11-01", DealID: ptr(int64(4))})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var task models.Task
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, models.PriorityMedium, task.Priority)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/tasks/"+strconv.FormatInt(task.ID, 10)+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, models.TaskCompleted, task.Status)

	_, body = do(t, http.MethodGet, ts.URL+"/api/tasks?deal=4", nil)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(body, &tasks))
	assert.Len(t, tasks, 1, "completed task hidden by default")

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/quotes", quoteRequest{Company: "Brightline", ContactID: 2, DealID: 4, QuoteDate: "2026-10-01", ExpiresOn: "2026-09-01"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/quotes", quoteRequest{Company: "Brightline", ContactID: 2, DealID: 4, QuoteDate: "2026-10-01", ExpiresOn: "2026-11-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	_, body = do(t, http.MethodGet, ts.URL+"/api/quotes?status=Draft", nil)
	var quotes []models.Quote
	require.NoError(t, json.Unmarshal(body, &quotes))
	require.Len(t, quotes, 1)
	assert.Equal(t, models.DeliveryEmail, quotes[0].DeliveryMethod)
}

func TestRecordListFilters(t *testing.T) {
	ts := setupServer(t, nil)

	listTasks := func(query string) []models.Task {
		t.Helper()
		resp, body := do(t, http.MethodGet, ts.URL+"/api/tasks"+query, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var out []models.Task
		require.NoError(t, json.Unmarshal(body, &out))
		return out
	}
	tasks := listTasks("?q=PILOT")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Send pilot scope", tasks[0].Title)
	assert.Len(t, listTasks("?status=pending&q=negotiation"), 1)
	assert.Empty(t, listTasks("?status=completed"))

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/tasks?status=done", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	listActivities := func(query string) []models.Activity {
		t.Helper()
		resp, body := do(t, http.MethodGet, ts.URL+"/api/activities"+query, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var out []models.Activity
		require.NoError(t, json.Unmarshal(body, &out))
		return out
	}
	activities := listActivities("?type=meeting")
	require.Len(t, activities, 1)
	assert.Equal(t, "Pricing review", activities[0].Subject)
	activities = listActivities("?q=reporting+gaps")
	require.Len(t, activities, 1)
	assert.Equal(t, "Discovery call", activities[0].Subject)
	assert.Empty(t, listActivities("?type=call&q=pricing"))

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/activities?type=fax", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/quotes", quoteRequest{Company: "Brightline", ContactID: 2, DealID: 4, QuoteDate: "2026-10-01", ExpiresOn: "2026-11-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	listQuotes := func(query string) []models.Quote {
		t.Helper()
		resp, body := do(t, http.MethodGet, ts.URL+"/api/quotes"+query, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var out []models.Quote
		require.NoError(t, json.Unmarshal(body, &out))
		return out
	}
	assert.Len(t, listQuotes("?q=marcus+webb"), 1, "contact name")
	assert.Len(t, listQuotes("?q=bright"), 1, "company")
	assert.Len(t, listQuotes("?q=draft"), 1, "status")
	assert.Empty(t, listQuotes("?q=northwind"))

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/quotes?status=pending", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 3.0, stats["total_contacts"])
	assert.Equal(t, 4.0, stats["active_deals"])
	assert.Equal(t, 15000.0, stats["won_value"])
	assert.Equal(t, 2.0, stats["pending_tasks"])
}

func ptr[T any](v T) *T { return &v }
