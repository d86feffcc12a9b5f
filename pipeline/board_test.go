// ABOUTME: Tests for the pipeline board state container
// ABOUTME: Confirm-then-apply moves, rejection handling, per-deal serialization, and view columns
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore wraps the memory store and remembers every patch it was sent.
type recordingStore struct {
	*db.MemoryStore
	mu        sync.Mutex
	patches   []models.DealPatch
	failNext  error
	listErr   error
	inFlight  int32
	maxFlight int32
	delay     time.Duration
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: db.NewMemoryStore()}
}

func (r *recordingStore) ListDeals(ctx context.Context) ([]models.Deal, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryStore.ListDeals(ctx)
}

func (r *recordingStore) UpdateDeal(ctx context.Context, id int64, patch models.DealPatch) (*models.Deal, error) {
	n := atomic.AddInt32(&r.inFlight, 1)
	defer atomic.AddInt32(&r.inFlight, -1)
	for {
		m := atomic.LoadInt32(&r.maxFlight)
		if n <= m || atomic.CompareAndSwapInt32(&r.maxFlight, m, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.patches = append(r.patches, patch)
	failure := r.failNext
	r.failNext = nil
	r.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	return r.MemoryStore.UpdateDeal(ctx, id, patch)
}

// seedExample creates the three deals from the board example. The memory
// store lists newest first, so they are created in reverse.
func seedExample(t *testing.T, store *recordingStore) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []*models.Deal{
		{Title: "Gamma", Stage: models.StageQualified, Value: 2000},
		{Title: "Beta", Stage: models.StageLead, Value: 500},
		{Title: "Alpha", Stage: models.StageLead, Value: 1000},
	} {
		require.NoError(t, store.CreateDeal(ctx, d))
	}
}

func dealByTitle(t *testing.T, b *Board, title string) models.Deal {
	t.Helper()
	for _, d := range b.Deals() {
		if d.Title == title {
			return d
		}
	}
	t.Fatalf("deal %q not on board", title)
	return models.Deal{}
}

func TestBoardMoveDealExample(t *testing.T) {
	store := newRecordingStore()
	seedExample(t, store)

	var edited []models.Deal
	b := NewBoard(store, OnDealEdited(func(d models.Deal) { edited = append(edited, d) }))
	require.NoError(t, b.Load(context.Background()))

	groups := b.Groups()
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 1500.0, groups[0].TotalValue)
	assert.Equal(t, 1, groups[1].Count)
	assert.Equal(t, 2000.0, groups[1].TotalValue)

	alpha := dealByTitle(t, b, "Alpha")
	c := b.NewController()
	require.NoError(t, c.Begin(alpha))
	res, err := c.Drop(context.Background(), models.StageQualified)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMoved, res.Outcome)

	require.Len(t, store.patches, 1)
	assert.Equal(t, []string{"stage"}, store.patches[0].Fields(), "a move must send only the stage")
	assert.Equal(t, models.StageQualified, *store.patches[0].Stage)

	groups = b.Groups()
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, 500.0, groups[0].TotalValue)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, 2500.0, groups[1].TotalValue)

	require.Len(t, edited, 1)
	assert.Equal(t, alpha.ID, edited[0].ID)
	assert.Equal(t, alpha.Title, edited[0].Title)
	assert.Equal(t, alpha.Value, edited[0].Value)
}

func TestBoardRejectedMoveLeavesStateUnchanged(t *testing.T) {
	store := newRecordingStore()
	seedExample(t, store)

	editedCalls := 0
	b := NewBoard(store, OnDealEdited(func(models.Deal) { editedCalls++ }))
	require.NoError(t, b.Load(context.Background()))
	before := b.Groups()

	alpha := dealByTitle(t, b, "Alpha")
	store.failNext = errors.New("network down")

	_, err := b.MoveDeal(context.Background(), alpha.ID, models.StageProposal)
	require.Error(t, err)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, models.StageLead, te.From)

	assert.Equal(t, before, b.Groups())
	assert.Equal(t, models.StageLead, dealByTitle(t, b, "Alpha").Stage)
	assert.Zero(t, editedCalls)
}

func TestBoardMoveSameStageSkipsStore(t *testing.T) {
	store := newRecordingStore()
	seedExample(t, store)
	b := NewBoard(store)
	require.NoError(t, b.Load(context.Background()))

	alpha := dealByTitle(t, b, "Alpha")
	got, err := b.MoveDeal(context.Background(), alpha.ID, models.StageLead)
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, got.ID)
	assert.Empty(t, store.patches)
}

func TestBoardMoveInvalidStage(t *testing.T) {
	store := newRecordingStore()
	b := NewBoard(store)

	_, err := b.MoveDeal(context.Background(), 1, "won")
	assert.ErrorIs(t, err, ErrInvalidStage)
	assert.Empty(t, store.patches)
}

func TestBoardMoveUnknownDealSurfacesNotFound(t *testing.T) {
	b := NewBoard(newRecordingStore())

	_, err := b.MoveDeal(context.Background(), 42, models.StageProposal)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardSerializesMovesPerDeal(t *testing.T) {
	store := newRecordingStore()
	store.delay = 5 * time.Millisecond
	seedExample(t, store)

	b := NewBoard(store)
	require.NoError(t, b.Load(context.Background()))
	alpha := dealByTitle(t, b, "Alpha")

	stages := []string{models.StageQualified, models.StageProposal, models.StageNegotiation, models.StageClosedWon}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(stage string) {
			defer wg.Done()
			_, _ = b.MoveDeal(context.Background(), alpha.ID, stage)
		}(stages[i%len(stages)])
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&store.maxFlight), "moves for one deal must not overlap")
	assert.Zero(t, b.locks.size(), "per-deal locks should be released")

	stored, err := store.GetDeal(context.Background(), alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Stage, dealByTitle(t, b, "Alpha").Stage, "board and store agree after the queue drains")
}

func TestBoardLockHonoursContext(t *testing.T) {
	b := NewBoard(newRecordingStore())

	unlock, err := b.locks.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = b.MoveDeal(ctx, 1, models.StageProposal)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBoardLoadFailure(t *testing.T) {
	store := newRecordingStore()
	store.listErr = errors.New("db offline")

	b := NewBoard(store)
	err := b.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load deals")
}

func TestBoardWarnsOnDataIntegrityProblems(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	store := newRecordingStore()
	b := NewBoard(store, WithLogger(logger))
	require.NoError(t, b.Load(context.Background()))

	missing := int64(77)
	b.Upsert(models.Deal{ID: 900, Title: "Legacy", Stage: "prospecting", ContactID: &missing})

	out := buf.String()
	assert.Contains(t, out, "unknown stage")
	assert.Contains(t, out, "missing contact")

	assert.Len(t, b.Unmatched(), 1)
	for _, g := range b.Groups() {
		assert.Zero(t, g.Count)
	}
}

func TestBoardCreateEditDelete(t *testing.T) {
	store := newRecordingStore()
	seedExample(t, store)

	var deleted []int64
	b := NewBoard(store, OnDealDeleted(func(id int64) { deleted = append(deleted, id) }))
	require.NoError(t, b.Load(context.Background()))

	fresh := &models.Deal{Title: "Fresh", Value: 300}
	require.NoError(t, b.CreateDeal(context.Background(), fresh))
	assert.Equal(t, fresh.ID, b.Deals()[0].ID, "new deals go to the front")

	title := "Fresh and improved"
	value := 450.0
	updated, err := b.EditDeal(context.Background(), fresh.ID, models.DealPatch{Title: &title, Value: &value})
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, updated.Stage)
	assert.Equal(t, title, dealByTitle(t, b, title).Title)

	badStage := "nowhere"
	_, err = b.EditDeal(context.Background(), fresh.ID, models.DealPatch{Stage: &badStage})
	assert.ErrorIs(t, err, ErrInvalidStage)

	negative := -1.0
	_, err = b.EditDeal(context.Background(), fresh.ID, models.DealPatch{Value: &negative})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 450.0, dealByTitle(t, b, title).Value)

	require.NoError(t, b.DeleteDeal(context.Background(), fresh.ID))
	_, ok := b.Deal(fresh.ID)
	assert.False(t, ok)
	assert.Equal(t, []int64{fresh.ID}, deleted)

	err = b.DeleteDeal(context.Background(), fresh.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardColumns(t *testing.T) {
	store := newRecordingStore()
	ctx := context.Background()

	contact := &models.Contact{FirstName: "Sarah", LastName: "Chen", Email: "s@n.io", Phone: "1", Company: "Northwind"}
	require.NoError(t, store.CreateContact(ctx, contact))
	gone := int64(500)
	require.NoError(t, store.CreateDeal(ctx, &models.Deal{Title: "Orphaned", ContactID: &gone, Probability: 30}))
	require.NoError(t, store.CreateDeal(ctx, &models.Deal{Title: "Pilot", ContactID: &contact.ID, Probability: 80, Stage: models.StageProposal, Value: 100}))

	b := NewBoard(store)
	require.NoError(t, b.Load(ctx))

	cols := b.Columns("")
	require.Len(t, cols, 6)
	lead := cols[0]
	require.Len(t, lead.Cards, 1)
	assert.Empty(t, lead.Cards[0].ContactName, "unresolved contacts render without a name")
	assert.Equal(t, TierLow, lead.Cards[0].Tier)

	proposal := cols[models.StageIndex(models.StageProposal)]
	require.Len(t, proposal.Cards, 1)
	assert.Equal(t, "Sarah Chen", proposal.Cards[0].ContactName)
	assert.Equal(t, "Northwind", proposal.Cards[0].Company)
	assert.Equal(t, TierHigh, proposal.Cards[0].Tier)
	assert.True(t, cols[models.StageIndex(models.StageNegotiation)].Empty())

	filtered := b.Columns("northwind")
	assert.Equal(t, 0, filtered[0].Count)
	assert.Equal(t, 1, filtered[models.StageIndex(models.StageProposal)].Count)
	assert.Equal(t, 100.0, filtered[models.StageIndex(models.StageProposal)].TotalValue)
}

func TestBoardTransitionObserver(t *testing.T) {
	store := newRecordingStore()
	seedExample(t, store)

	type seen struct {
		from, to string
		failed   bool
	}
	var got []seen
	b := NewBoard(store, WithTransitionObserver(func(from, to string, err error) {
		got = append(got, seen{from, to, err != nil})
	}))
	require.NoError(t, b.Load(context.Background()))

	beta := dealByTitle(t, b, "Beta")
	_, err := b.MoveDeal(context.Background(), beta.ID, models.StageClosedWon)
	require.NoError(t, err)

	store.failNext = errors.New("nope")
	_, err = b.MoveDeal(context.Background(), beta.ID, models.StageClosedLost)
	require.Error(t, err)

	assert.Equal(t, []seen{
		{models.StageLead, models.StageClosedWon, false},
		{models.StageClosedWon, models.StageClosedLost, true},
	}, got)
}

func TestBoardUnknownDealReportsUnknownSourceStage(t *testing.T) {
	store := newRecordingStore()
	seedExample(t, store)

	var froms []string
	b := NewBoard(store, WithTransitionObserver(func(from, to string, err error) {
		froms = append(froms, from)
	}))
	// Not loaded: the board has no local copy of any deal.
	deals, err := store.ListDeals(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, deals)

	_, err = b.MoveDeal(context.Background(), 4242, models.StageProposal)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, UnknownStage, te.From)
	assert.Contains(t, err.Error(), "from unknown to proposal")

	_, err = b.MoveDeal(context.Background(), deals[0].ID, models.StageNegotiation)
	require.NoError(t, err)

	_, err = b.EditDeal(context.Background(), deals[1].ID, models.StagePatch(models.StageClosedWon))
	require.NoError(t, err)

	assert.Equal(t, []string{UnknownStage, UnknownStage, UnknownStage}, froms)
	for _, from := range froms {
		assert.NotEmpty(t, from)
	}
}

func TestBoardUpsertRacesContactChanges(t *testing.T) {
	var buf bytes.Buffer
	b := NewBoard(newRecordingStore(), WithLogger(log.New(&buf)))
	require.NoError(t, b.Load(context.Background()))

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			contactID := int64(i % 10)
			b.Upsert(models.Deal{ID: int64(i%5 + 1), Title: "Churn", Stage: models.StageLead, ContactID: &contactID})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			b.UpsertContact(models.Contact{ID: int64(i % 10), FirstName: "Contact"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			b.RemoveContact(int64(i % 10))
		}
	}()
	wg.Wait()

	assert.Len(t, b.Deals(), 5)
	for _, d := range b.Deals() {
		require.NotNil(t, d.ContactID)
	}
}
