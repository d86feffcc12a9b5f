// ABOUTME: Tests for pipeline and deal MCP tool handlers
// ABOUTME: Board reads, drag-equivalent moves, and deal create/update/delete
package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBoard(t *testing.T) (*db.MemoryStore, *pipeline.Board) {
	t.Helper()
	store := db.NewMemoryStore()
	board := pipeline.NewBoard(store)
	if err := board.Load(context.Background()); err != nil {
		t.Fatalf("failed to load board: %v", err)
	}
	return store, board
}

func addContact(t *testing.T, store db.ContactStore, first, last, company string) models.Contact {
	t.Helper()
	c := &models.Contact{FirstName: first, LastName: last, Email: first + "@example.com", Phone: "555-0100", Company: company}
	if err := store.CreateContact(context.Background(), c); err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}
	return *c
}

func TestCreateDealDefaults(t *testing.T) {
	_, board := setupBoard(t)
	handler := NewDealHandlers(board)

	_, out, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "Pilot", Value: 1200})
	if err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	if out.ID == 0 {
		t.Error("ID was not set")
	}
	if out.Stage != models.StageLead || out.StageName != "Lead" {
		t.Errorf("expected lead stage, got %s (%s)", out.Stage, out.StageName)
	}
	if out.Probability != models.DefaultProbability {
		t.Errorf("expected default probability, got %d", out.Probability)
	}
	if _, ok := board.Deal(out.ID); !ok {
		t.Error("new deal missing from board")
	}
}

func TestCreateDealKeepsZeroProbability(t *testing.T) {
	store, board := setupBoard(t)
	handler := NewDealHandlers(board)

	zero := 0
	_, out, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "Long shot", Probability: &zero})
	require.NoError(t, err)
	assert.Zero(t, out.Probability)

	stored, err := store.GetDeal(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Probability)
}

func TestCreateDealWithContactName(t *testing.T) {
	store, board := setupBoard(t)
	sarah := addContact(t, store, "Sarah", "Chen", "Northwind")
	require.NoError(t, board.Load(context.Background()))

	handler := NewDealHandlers(board)
	_, out, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{
		Title:             "Analytics",
		ContactName:       "sarah chen",
		ExpectedCloseDate: "2026-06-30",
	})
	require.NoError(t, err)

	require.NotNil(t, out.ContactID)
	assert.Equal(t, sarah.ID, *out.ContactID)
	assert.Equal(t, "Sarah Chen", out.ContactName)
	require.NotNil(t, out.ExpectedCloseDate)
	assert.Equal(t, "2026-06-30", *out.ExpectedCloseDate)
}

func TestCreateDealRejectsBadInput(t *testing.T) {
	_, board := setupBoard(t)
	handler := NewDealHandlers(board)

	if _, _, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{}); err == nil {
		t.Error("expected error for missing title")
	}
	if _, _, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "x", Stage: "won"}); err == nil {
		t.Error("expected error for invalid stage")
	}
	if _, _, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "x", ExpectedCloseDate: "soon"}); err == nil {
		t.Error("expected error for bad date")
	}
	_, _, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "x", Value: -5})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateDealMergesFields(t *testing.T) {
	_, board := setupBoard(t)
	handler := NewDealHandlers(board)

	_, created, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "Retainer", Value: 900, Stage: models.StageProposal, Description: "monthly"})
	require.NoError(t, err)

	value := 1500.0
	_, updated, err := handler.UpdateDeal(context.Background(), nil, UpdateDealInput{ID: created.ID, Value: &value})
	require.NoError(t, err)

	assert.Equal(t, 1500.0, updated.Value)
	assert.Equal(t, "Retainer", updated.Title)
	assert.Equal(t, models.StageProposal, updated.Stage)
	assert.Equal(t, "monthly", updated.Description)

	_, _, err = handler.UpdateDeal(context.Background(), nil, UpdateDealInput{ID: created.ID})
	assert.Error(t, err, "empty update should be rejected")

	_, _, err = handler.UpdateDeal(context.Background(), nil, UpdateDealInput{ID: 999, Title: "ghost"})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteDeal(t *testing.T) {
	store, board := setupBoard(t)
	handler := NewDealHandlers(board)

	_, created, err := handler.CreateDeal(context.Background(), nil, CreateDealInput{Title: "Short lived"})
	require.NoError(t, err)

	_, out, err := handler.DeleteDeal(context.Background(), nil, DeleteDealInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, out.Success)

	_, err = store.GetDeal(context.Background(), created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, ok := board.Deal(created.ID)
	assert.False(t, ok)
}

func TestGetPipeline(t *testing.T) {
	store, board := setupBoard(t)
	require.NoError(t, db.SeedDemoData(context.Background(), store))

	handler := NewPipelineHandlers(board)
	_, out, err := handler.GetPipeline(context.Background(), nil, GetPipelineInput{})
	require.NoError(t, err)

	require.Len(t, out.Stages, 6)
	assert.Equal(t, "lead", out.Stages[0].ID)
	assert.Equal(t, "gray", out.Stages[0].Color)
	assert.Equal(t, 6, out.Summary.Deals)
	assert.Equal(t, 4, out.Summary.OpenDeals)
	for _, s := range out.Stages {
		assert.Equal(t, 1, s.Count, "stage %s", s.ID)
		assert.Len(t, s.Deals, 1)
	}

	_, filtered, err := handler.GetPipeline(context.Background(), nil, GetPipelineInput{Search: "brightline"})
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Summary.Deals)
	assert.Empty(t, filtered.Stages[0].Deals)
	assert.NotNil(t, filtered.Stages[0].Deals)
}

func TestMoveDeal(t *testing.T) {
	store, board := setupBoard(t)
	deal := &models.Deal{Title: "Alpha", Value: 1000}
	require.NoError(t, store.CreateDeal(context.Background(), deal))

	handler := NewPipelineHandlers(board)

	// the board has not seen this deal yet; the handler reloads
	_, out, err := handler.MoveDeal(context.Background(), nil, MoveDealInput{ID: deal.ID, Stage: models.StageQualified})
	require.NoError(t, err)
	assert.Equal(t, "moved", out.Outcome)
	assert.Equal(t, models.StageLead, out.From)
	assert.Equal(t, models.StageQualified, out.Deal.Stage)

	stored, err := store.GetDeal(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageQualified, stored.Stage)
	assert.Equal(t, "Alpha", stored.Title)

	_, out, err = handler.MoveDeal(context.Background(), nil, MoveDealInput{ID: deal.ID, Stage: models.StageQualified})
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out.Outcome)

	_, _, err = handler.MoveDeal(context.Background(), nil, MoveDealInput{ID: deal.ID, Stage: "archive"})
	assert.Error(t, err)

	_, _, err = handler.MoveDeal(context.Background(), nil, MoveDealInput{ID: 404, Stage: models.StageProposal})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindDeals(t *testing.T) {
	store, board := setupBoard(t)
	require.NoError(t, db.SeedDemoData(context.Background(), store))

	handler := NewQueryHandlers(board)

	_, out, err := handler.FindDeals(context.Background(), nil, FindDealsInput{OpenOnly: true, MinValue: 10000})
	require.NoError(t, err)
	titles := make([]string, 0, out.Count)
	for _, d := range out.Deals {
		titles = append(titles, d.Title)
	}
	assert.ElementsMatch(t, []string{"Warehouse analytics pilot", "Fleet tracking rollout", "Data migration"}, titles)

	_, out, err = handler.FindDeals(context.Background(), nil, FindDealsInput{Stage: models.StageClosedWon})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Annual license renewal", out.Deals[0].Title)

	_, _, err = handler.FindDeals(context.Background(), nil, FindDealsInput{Stage: "won"})
	assert.Error(t, err)
}
