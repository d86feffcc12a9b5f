// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph and get_dashboard tools for agents
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealboard/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// VizStore is everything the graphs and the dashboard read.
type VizStore interface {
	viz.GraphStore
	viz.DashboardStore
}

type VizHandlers struct {
	store VizStore
}

func NewVizHandlers(store VizStore) *VizHandlers {
	return &VizHandlers{store: store}
}

type GenerateGraphInput struct {
	Type      string `json:"type" jsonschema:"Graph type: pipeline or contacts"`
	ContactID int64  `json:"contact_id,omitempty" jsonschema:"Contact to centre the contacts graph on (optional)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	generator := viz.NewGraphGenerator(h.store)
	var dot string
	var err error

	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "contacts":
		dot, err = generator.GenerateContactGraph(ctx, optionalID(input.ContactID))
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, contacts)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: strings.Count(dot, "[label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}

type GetDashboardInput struct{}

type StageSummaryOutput struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

type DashboardOutput struct {
	TotalContacts    int                  `json:"total_contacts"`
	TotalDeals       int                  `json:"total_deals"`
	ActiveDeals      int                  `json:"active_deals"`
	TotalValue       float64              `json:"total_value"`
	WonValue         float64              `json:"won_value"`
	WeightedValue    float64              `json:"weighted_value"`
	PendingTasks     int                  `json:"pending_tasks"`
	OverdueTasks     int                  `json:"overdue_tasks"`
	Stages           []StageSummaryOutput `json:"stages"`
	UpcomingTasks    []TaskOutput         `json:"upcoming_tasks"`
	RecentActivities []ActivityOutput     `json:"recent_activities"`
}

func (h *VizHandlers) GetDashboard(ctx context.Context, request *mcp.CallToolRequest, input GetDashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats, err := viz.GenerateDashboardStats(ctx, h.store, time.Now())
	if err != nil {
		return nil, DashboardOutput{}, err
	}

	output := DashboardOutput{
		TotalContacts:    stats.TotalContacts,
		TotalDeals:       stats.TotalDeals,
		ActiveDeals:      stats.ActiveDeals,
		TotalValue:       stats.TotalValue,
		WonValue:         stats.WonValue,
		WeightedValue:    stats.Summary.WeightedValue,
		PendingTasks:     stats.PendingTasks,
		OverdueTasks:     stats.OverdueTasks,
		Stages:           make([]StageSummaryOutput, 0, len(stats.Pipeline)),
		UpcomingTasks:    make([]TaskOutput, 0, len(stats.UpcomingTasks)),
		RecentActivities: make([]ActivityOutput, 0, len(stats.RecentActivities)),
	}
	for _, g := range stats.Pipeline {
		output.Stages = append(output.Stages, StageSummaryOutput{ID: g.Stage.ID, Name: g.Stage.Name, Count: g.Count, TotalValue: g.TotalValue})
	}
	for i := range stats.UpcomingTasks {
		output.UpcomingTasks = append(output.UpcomingTasks, taskToOutput(&stats.UpcomingTasks[i]))
	}
	for i := range stats.RecentActivities {
		output.RecentActivities = append(output.RecentActivities, activityToOutput(&stats.RecentActivities[i]))
	}
	return nil, output, nil
}
