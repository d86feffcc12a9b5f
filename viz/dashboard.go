// ABOUTME: Dashboard statistics and terminal rendering
// ABOUTME: Headline counts, pipeline bars, upcoming tasks, and recent activity
package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

const (
	recentLimit   = 5
	upcomingLimit = 5
	staleDays     = 30
)

// DashboardStore is what the dashboard reads.
type DashboardStore interface {
	db.ContactStore
	db.DealStore
	db.TaskStore
	db.ActivityStore
}

type DashboardStats struct {
	Pipeline []pipeline.StageGroup `json:"pipeline"`
	Summary  pipeline.Summary      `json:"summary"`

	TotalContacts int     `json:"total_contacts"`
	TotalDeals    int     `json:"total_deals"`
	ActiveDeals   int     `json:"active_deals"`
	TotalValue    float64 `json:"total_value"`
	WonValue      float64 `json:"won_value"`
	PendingTasks  int     `json:"pending_tasks"`
	OverdueTasks  int     `json:"overdue_tasks"`

	UpcomingTasks    []models.Task     `json:"upcoming_tasks"`
	RecentActivities []models.Activity `json:"recent_activities"`
	StaleContacts    []StaleContact    `json:"stale_contacts,omitempty"`
}

type StaleContact struct {
	Name      string `json:"name"`
	DaysSince int    `json:"days_since"`
}

// GenerateDashboardStats gathers the dashboard numbers as of now.
func GenerateDashboardStats(ctx context.Context, store DashboardStore, now time.Time) (*DashboardStats, error) {
	deals, err := store.ListDeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	contacts, err := store.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	tasks, err := store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	activities, err := store.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	groups := pipeline.GroupByStage(deals)
	summary := pipeline.Summarize(groups)

	stats := &DashboardStats{
		Pipeline:      groups,
		Summary:       summary,
		TotalContacts: len(contacts),
		TotalDeals:    summary.Deals,
		ActiveDeals:   summary.OpenDeals,
		TotalValue:    summary.TotalValue,
		WonValue:      summary.WonValue,
	}

	var open []models.Task
	for _, t := range tasks {
		if t.Status == models.TaskPending {
			stats.PendingTasks++
		}
		if t.Status != models.TaskCompleted && t.Status != models.TaskCancelled {
			open = append(open, t)
			if t.DueDate.Before(now) {
				stats.OverdueTasks++
			}
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].DueDate.Before(open[j].DueDate) })
	stats.UpcomingTasks = head(open, upcomingLimit)

	recent := append([]models.Activity(nil), activities...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	stats.RecentActivities = head(recent, recentLimit)

	for _, c := range contacts {
		if c.LastActivity == nil {
			continue
		}
		days := int(now.Sub(*c.LastActivity).Hours() / 24)
		if days > staleDays {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.FullName(), DaysSince: days})
		}
	}

	return stats, nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	if items == nil {
		return []T{}
	}
	return items
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  💼 %d active of %d deals  ✅ %d pending tasks\n",
		stats.TotalContacts, stats.ActiveDeals, stats.TotalDeals, stats.PendingTasks))
	out.WriteString(fmt.Sprintf("  💰 %s total  🏆 %s won  ⚖️  %s weighted\n\n",
		formatMoney(stats.TotalValue), formatMoney(stats.WonValue), formatMoney(stats.Summary.WeightedValue)))

	if len(stats.UpcomingTasks) > 0 {
		out.WriteString("UPCOMING TASKS\n")
		for _, t := range stats.UpcomingTasks {
			out.WriteString(fmt.Sprintf("  %s  %-8s %s\n", t.DueDate.Format("2006-01-02"), t.Priority, t.Title))
		}
		out.WriteString("\n")
	}

	if len(stats.RecentActivities) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for _, a := range stats.RecentActivities {
			out.WriteString(fmt.Sprintf("  %s  %-7s %s\n", a.CreatedAt.Format("2006-01-02"), a.Type, a.Subject))
		}
		out.WriteString("\n")
	}

	if stats.OverdueTasks > 0 || len(stats.StaleContacts) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if stats.OverdueTasks > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d tasks overdue\n", stats.OverdueTasks))
		}
		if len(stats.StaleContacts) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no activity in %d+ days\n", len(stats.StaleContacts), staleDays))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, groups []pipeline.StageGroup) {
	maxCount := 1
	for _, g := range groups {
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}

	for _, g := range groups {
		barLength := (g.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n", g.Stage.Name, bar, g.Count, formatMoney(g.TotalValue)))
	}
}
