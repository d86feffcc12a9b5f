// ABOUTME: Pipeline snapshot export
// ABOUTME: Serialises the grouped board to JSON under pipeline/<ulid>.json in a blob store
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/dealboard/pipeline"
	"github.com/oklog/ulid/v2"
)

const snapshotPrefix = "pipeline/"

// Snapshot is the board as it stood at GeneratedAt.
type Snapshot struct {
	ID          string                `json:"id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Groups      []pipeline.StageGroup `json:"groups"`
	Summary     pipeline.Summary      `json:"summary"`
	// Unmatched counts deals whose stage is not on the board.
	Unmatched int `json:"unmatched"`
}

type Exporter struct {
	store   BlobStore
	now     func() time.Time
	entropy io.Reader
}

type Option func(*Exporter)

// WithClock fixes the time used for GeneratedAt and the id timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithEntropy sets the random source behind snapshot ids.
func WithEntropy(r io.Reader) Option {
	return func(e *Exporter) { e.entropy = r }
}

func NewExporter(store BlobStore, opts ...Option) *Exporter {
	e := &Exporter{store: store, now: time.Now, entropy: ulid.DefaultEntropy()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export reloads the board and writes one snapshot.
func (e *Exporter) Export(ctx context.Context, board *pipeline.Board) (*Snapshot, Info, error) {
	if err := board.Load(ctx); err != nil {
		return nil, Info{}, err
	}

	now := e.now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), e.entropy)
	if err != nil {
		return nil, Info{}, fmt.Errorf("failed to generate snapshot id: %w", err)
	}

	groups := board.Groups()
	snap := &Snapshot{
		ID:          id.String(),
		GeneratedAt: now,
		Groups:      groups,
		Summary:     pipeline.Summarize(groups),
		Unmatched:   len(board.Unmatched()),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, Info{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	info, err := e.store.Put(ctx, SnapshotKey(snap.ID), data, "application/json")
	if err != nil {
		return nil, Info{}, err
	}
	return snap, info, nil
}

// List returns stored snapshots oldest first; ulid keys sort by time.
func (e *Exporter) List(ctx context.Context) ([]Info, error) {
	return e.store.List(ctx, snapshotPrefix)
}

func (e *Exporter) Load(ctx context.Context, id string) (*Snapshot, error) {
	data, err := e.store.Get(ctx, SnapshotKey(id))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func SnapshotKey(id string) string {
	return snapshotPrefix + id + ".json"
}
