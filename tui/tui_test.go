// ABOUTME: Tests for the kanban TUI model
// ABOUTME: Drives Update with key messages and runs the returned commands inline
package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records stage writes and can be told to reject them.
type countingStore struct {
	*db.MemoryStore
	mu      sync.Mutex
	updates int
	reject  bool
}

func (s *countingStore) UpdateDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	s.mu.Lock()
	s.updates++
	reject := s.reject
	s.mu.Unlock()
	if reject {
		return nil, errors.New("connection refused")
	}
	return s.MemoryStore.UpdateDeal(ctx, id, patch)
}

func setupModel(t *testing.T) (Model, *countingStore) {
	t.Helper()
	store := &countingStore{MemoryStore: db.NewMemoryStore()}
	ctx := context.Background()

	for _, d := range []models.Deal{
		{Title: "Beta", Value: 500, Stage: models.StageLead, Probability: 20},
		{Title: "Alpha", Value: 1000, Stage: models.StageLead, Probability: 80},
	} {
		d := d
		if err := store.CreateDeal(ctx, &d); err != nil {
			t.Fatalf("failed to create deal: %v", err)
		}
	}

	board := pipeline.NewBoard(store)
	m := NewModel(ctx, board, store)
	m = run(t, m, m.Init())
	if !m.loaded {
		t.Fatalf("board did not load: %s", m.status)
	}
	return m, store
}

// run feeds the result of cmd back into the model until nothing is left.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return m
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = run(t, next.(Model), cmd)
	}
	return m
}

func stageOf(t *testing.T, store *countingStore, title string) string {
	t.Helper()
	deals, err := store.ListDeals(context.Background())
	require.NoError(t, err)
	for _, d := range deals {
		if d.Title == title {
			return d.Stage
		}
	}
	t.Fatalf("deal %q not found", title)
	return ""
}

func TestDragMovesDealToNextStage(t *testing.T) {
	m, store := setupModel(t)

	card, ok := m.selectedCard()
	require.True(t, ok)
	require.Equal(t, "Alpha", card.Deal.Title, "newest deal first")

	m = press(t, m, " ")
	assert.True(t, m.dragging)
	assert.Equal(t, pipeline.Dragging, m.controller.State())

	m = press(t, m, "l", " ")

	assert.False(t, m.dragging)
	assert.Equal(t, pipeline.Idle, m.controller.State())
	assert.Equal(t, models.StageQualified, stageOf(t, store, "Alpha"))
	assert.Equal(t, 1, m.col, "cursor follows the card")
	assert.Equal(t, "Moved Alpha to Qualified", m.status)
	assert.Equal(t, 1, m.columns[1].Count)
	assert.Equal(t, 1000.0, m.columns[1].TotalValue)
}

func TestDropOnSameColumnIsNoop(t *testing.T) {
	m, store := setupModel(t)

	m = press(t, m, " ", " ")

	assert.Zero(t, store.updates)
	assert.False(t, m.dragging)
	assert.Equal(t, models.StageLead, stageOf(t, store, "Alpha"))
}

func TestRejectedDropShowsStatus(t *testing.T) {
	m, store := setupModel(t)
	store.reject = true

	m = press(t, m, " ", "l", "l", " ")

	assert.Equal(t, 1, store.updates)
	assert.True(t, m.statusErr)
	assert.True(t, strings.HasPrefix(m.status, "Failed to update deal stage"), m.status)
	assert.Contains(t, m.status, "connection refused")
	assert.Equal(t, 0, m.col, "cursor returns to the source column")

	deal, ok := m.board.Deal(m.columns[0].Cards[m.row].Deal.ID)
	require.True(t, ok)
	assert.Equal(t, models.StageLead, deal.Stage)
	assert.Equal(t, 2, m.columns[0].Count)
}

func TestEscCancelsDrag(t *testing.T) {
	m, store := setupModel(t)

	m = press(t, m, " ", "l", "l", "esc")

	assert.False(t, m.dragging)
	assert.Equal(t, pipeline.Idle, m.controller.State())
	assert.Equal(t, 0, m.col)
	assert.Zero(t, store.updates)
}

func TestFilterNarrowsColumns(t *testing.T) {
	m, _ := setupModel(t)

	m = press(t, m, "/", "b", "e", "t", "a", "enter")

	assert.False(t, m.filtering)
	require.Len(t, m.columns[0].Cards, 1)
	assert.Equal(t, "Beta", m.columns[0].Cards[0].Deal.Title)
	assert.Equal(t, 500.0, m.columns[0].TotalValue)

	m = press(t, m, "esc")
	assert.Len(t, m.columns[0].Cards, 2)
}

func TestDeleteAfterConfirmation(t *testing.T) {
	m, store := setupModel(t)

	m = press(t, m, "d")
	assert.Equal(t, ViewConfirmDelete, m.viewMode)
	m = press(t, m, "n")
	assert.Equal(t, ViewBoard, m.viewMode)

	m = press(t, m, "d", "y")
	assert.Equal(t, ViewBoard, m.viewMode)
	assert.Equal(t, "Deleted Alpha", m.status)

	deals, err := store.ListDeals(context.Background())
	require.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Len(t, m.columns[0].Cards, 1)
}

func TestEditSavesDeal(t *testing.T) {
	m, store := setupModel(t)

	m = press(t, m, "e")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.Equal(t, "Alpha", m.formInputs[fieldTitle].Value())

	m.formInputs[fieldValue].SetValue("2,500")
	m.formInputs[fieldCloseDate].SetValue("2026-09-30")
	m = press(t, m, "enter")

	require.False(t, m.statusErr, m.status)
	assert.Equal(t, ViewDetail, m.viewMode)

	deals, err := store.ListDeals(context.Background())
	require.NoError(t, err)
	var alpha models.Deal
	for _, d := range deals {
		if d.Title == "Alpha" {
			alpha = d
		}
	}
	assert.Equal(t, 2500.0, alpha.Value)
	assert.Equal(t, models.StageLead, alpha.Stage)
	require.NotNil(t, alpha.ExpectedCloseDate)
	assert.Equal(t, "2026-09-30", alpha.ExpectedCloseDate.Format("2006-01-02"))
}

func TestEditRejectsBadNumbers(t *testing.T) {
	m, _ := setupModel(t)

	m = press(t, m, "e")
	m.formInputs[fieldProbability].SetValue("lots")
	m = press(t, m, "enter")

	assert.Equal(t, ViewEdit, m.viewMode)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "probability")
}

func TestNewDealLandsInCurrentColumn(t *testing.T) {
	m, store := setupModel(t)

	m = press(t, m, "l", "n")
	require.Equal(t, ViewEdit, m.viewMode)
	m.formInputs[fieldTitle].SetValue("Gamma")
	m = press(t, m, "enter")

	require.False(t, m.statusErr, m.status)
	assert.Equal(t, models.StageQualified, stageOf(t, store, "Gamma"))
	assert.Equal(t, 1, m.columns[1].Count)
}

func TestNewDealProbability(t *testing.T) {
	m, store := setupModel(t)

	m = press(t, m, "n")
	m.formInputs[fieldTitle].SetValue("Gamma")
	m = press(t, m, "enter")
	require.False(t, m.statusErr, m.status)

	m = press(t, m, "esc", "n")
	m.formInputs[fieldTitle].SetValue("Delta")
	m.formInputs[fieldProbability].SetValue("0")
	m = press(t, m, "enter")
	require.False(t, m.statusErr, m.status)

	deals, err := store.ListDeals(context.Background())
	require.NoError(t, err)
	got := map[string]int{}
	for _, d := range deals {
		got[d.Title] = d.Probability
	}
	assert.Equal(t, models.DefaultProbability, got["Gamma"], "blank probability gets the default")
	assert.Equal(t, 0, got["Delta"], "an explicit zero is kept")
}

func TestCursorFollowsCardAcrossColumns(t *testing.T) {
	m, _ := setupModel(t)

	m = press(t, m, "j")
	card, ok := m.selectedCard()
	require.True(t, ok)
	require.Equal(t, "Beta", card.Deal.Title)

	m = press(t, m, " ", "l", "l", " ")

	assert.Equal(t, models.StageIndex(models.StageProposal), m.col)
	assert.Equal(t, 0, m.row)
	card, ok = m.selectedCard()
	require.True(t, ok)
	assert.Equal(t, "Beta", card.Deal.Title)
}

func TestViewShowsEmptyColumns(t *testing.T) {
	m, _ := setupModel(t)
	m.width = 200

	out := m.View()
	for _, want := range []string{"DEAL PIPELINE", "Lead", "Closed Lost", "No deals in this stage", "Alpha", "$1,000"} {
		assert.Contains(t, out, want)
	}
}
