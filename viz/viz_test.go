// ABOUTME: Tests for graph generation and dashboard statistics
// ABOUTME: Runs against the seeded in-memory record store
package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *db.MemoryStore {
	t.Helper()
	store := db.NewMemoryStore()
	if err := db.SeedDemoData(context.Background(), store); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return store
}

func TestGeneratePipelineGraph(t *testing.T) {
	generator := NewGraphGenerator(seededStore(t))

	dot, err := generator.GeneratePipelineGraph(context.Background())
	require.NoError(t, err)

	for _, want := range []string{"Deal Pipeline", "Closed Won", "Negotiation", "Warehouse analytics pilot", "Hardware refresh"} {
		assert.Contains(t, dot, want)
	}
}

func TestGeneratePipelineGraphEmpty(t *testing.T) {
	generator := NewGraphGenerator(db.NewMemoryStore())

	dot, err := generator.GeneratePipelineGraph(context.Background())
	require.NoError(t, err)
	assert.Contains(t, dot, "0 deals")
}

func TestGenerateContactGraph(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	contacts, err := store.ListContacts(ctx)
	require.NoError(t, err)

	var sarah models.Contact
	for _, c := range contacts {
		if c.FirstName == "Sarah" {
			sarah = c
		}
	}

	generator := NewGraphGenerator(store)
	dot, err := generator.GenerateContactGraph(ctx, &sarah.ID)
	require.NoError(t, err)

	assert.Contains(t, dot, "Sarah Chen")
	assert.Contains(t, dot, "Warehouse analytics pilot")
	assert.Contains(t, dot, "Send pilot scope")
	assert.NotContains(t, dot, "Fleet tracking rollout", "other contacts' deals stay out")

	all, err := generator.GenerateContactGraph(ctx, nil)
	require.NoError(t, err)
	assert.Contains(t, all, "Fleet tracking rollout")

	missing := int64(999)
	_, err = generator.GenerateContactGraph(ctx, &missing)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGenerateDashboardStats(t *testing.T) {
	stats, err := GenerateDashboardStats(context.Background(), seededStore(t), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalContacts)
	assert.Equal(t, 6, stats.TotalDeals)
	assert.Equal(t, 4, stats.ActiveDeals)
	assert.Equal(t, 144500.0, stats.TotalValue)
	assert.Equal(t, 15000.0, stats.WonValue)
	assert.Equal(t, 2, stats.PendingTasks)
	assert.Zero(t, stats.OverdueTasks)
	require.Len(t, stats.UpcomingTasks, 2)
	assert.Equal(t, "Send pilot scope", stats.UpcomingTasks[0].Title, "soonest due first")
	assert.Len(t, stats.RecentActivities, 2)
	require.Len(t, stats.Pipeline, 6)
	assert.Equal(t, 1, stats.Pipeline[0].Count)
}

func TestDashboardCountsOverdueAndStale(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := now.AddDate(0, 0, -45)
	require.NoError(t, store.CreateContact(ctx, &models.Contact{FirstName: "Quiet", LastName: "Customer", Email: "q@c.io", Phone: "1", LastActivity: &old}))
	require.NoError(t, store.CreateTask(ctx, &models.Task{Title: "Late", DueDate: now.AddDate(0, 0, -1)}))
	require.NoError(t, store.CreateTask(ctx, &models.Task{Title: "Done", DueDate: now.AddDate(0, 0, -1), Status: models.TaskCompleted}))

	stats, err := GenerateDashboardStats(ctx, store, now)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.OverdueTasks)
	assert.Equal(t, 1, stats.PendingTasks)
	require.Len(t, stats.StaleContacts, 1)
	assert.Equal(t, 45, stats.StaleContacts[0].DaysSince)
	assert.NotNil(t, stats.RecentActivities)
}

func TestRenderDashboard(t *testing.T) {
	stats, err := GenerateDashboardStats(context.Background(), seededStore(t), time.Now())
	require.NoError(t, err)

	out := RenderDashboard(stats)
	for _, want := range []string{"DEALBOARD", "PIPELINE OVERVIEW", "Lead", "Closed Lost", "UPCOMING TASKS", "Pricing review"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
}
