// ABOUTME: MCP prompt handlers for reusable pipeline workflow templates
// ABOUTME: Provides deal-analysis, pipeline-review, and follow-up-suggestions prompts
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PromptStore is what the prompt templates read.
type PromptStore interface {
	db.TaskStore
	db.ActivityStore
}

type PromptHandlers struct {
	store PromptStore
	board *pipeline.Board
}

func NewPromptHandlers(store PromptStore, board *pipeline.Board) *PromptHandlers {
	return &PromptHandlers{store: store, board: board}
}

// Prompts lists the templates the server advertises.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "deal-analysis",
			Description: "Analyse one deal with its contact, tasks, and recent activity",
			Arguments:   []*mcp.PromptArgument{{Name: "deal_id", Description: "Deal ID", Required: true}},
		},
		{
			Name:        "pipeline-review",
			Description: "Review pipeline health across every stage",
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Suggest follow-ups for open deals that have gone quiet",
			Arguments:   []*mcp.PromptArgument{{Name: "days", Description: "Days without activity (default 14)"}},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	if err := h.board.Load(ctx); err != nil {
		return nil, err
	}

	args := request.Params.Arguments
	switch request.Params.Name {
	case "deal-analysis":
		return h.getDealAnalysisPrompt(ctx, args)
	case "pipeline-review":
		return h.getPipelineReviewPrompt()
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx, args)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getDealAnalysisPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["deal_id"]
	if !ok {
		return nil, fmt.Errorf("deal_id is required")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid deal_id: %w", err)
	}

	deal, ok := h.board.Deal(id)
	if !ok {
		return nil, &models.NotFoundError{Entity: "deal", ID: id}
	}

	tasks, err := h.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	activities, err := h.store.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please analyze this deal:\n\n")
	promptText.WriteString(fmt.Sprintf("Title: %s\n", deal.Title))
	promptText.WriteString(fmt.Sprintf("Value: $%.2f\n", deal.Value))
	promptText.WriteString(fmt.Sprintf("Stage: %s\n", stageName(deal.Stage)))
	promptText.WriteString(fmt.Sprintf("Probability: %d%%\n", deal.Probability))
	if c, ok := h.board.Contact(deal.ContactID); ok {
		promptText.WriteString(fmt.Sprintf("Contact: %s", c.FullName()))
		if c.Company != "" {
			promptText.WriteString(fmt.Sprintf(" (%s)", c.Company))
		}
		promptText.WriteString("\n")
	}
	if deal.ExpectedCloseDate != nil {
		promptText.WriteString(fmt.Sprintf("Expected close: %s\n", deal.ExpectedCloseDate.Format(dateLayout)))
	}
	if deal.Description != "" {
		promptText.WriteString(fmt.Sprintf("Notes: %s\n", deal.Description))
	}

	promptText.WriteString("\nOpen tasks:\n")
	openTasks := 0
	for _, t := range tasks {
		if t.DealID != nil && *t.DealID == id && t.IsOpen() {
			promptText.WriteString(fmt.Sprintf("  - %s (due %s, %s)\n", t.Title, t.DueDate.Format(dateLayout), t.Priority))
			openTasks++
		}
	}
	if openTasks == 0 {
		promptText.WriteString("  none\n")
	}

	promptText.WriteString("\nRecent activity:\n")
	shown := 0
	for _, a := range activities {
		if a.DealID == nil || *a.DealID != id {
			continue
		}
		promptText.WriteString(fmt.Sprintf("  - [%s] %s: %s\n", a.Type, a.CreatedAt.Format(dateLayout), a.Subject))
		shown++
		if shown == 5 {
			break
		}
	}
	if shown == 0 {
		promptText.WriteString("  none\n")
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. An assessment of how likely this deal is to close")
	promptText.WriteString("\n2. The next best action to move it forward")

	return userPrompt(fmt.Sprintf("Analysis of deal %d", id), promptText.String()), nil
}

func (h *PromptHandlers) getPipelineReviewPrompt() (*mcp.GetPromptResult, error) {
	groups := h.board.Groups()
	summary := pipeline.Summarize(groups)

	var promptText strings.Builder
	promptText.WriteString("Please analyze the current deal pipeline:\n\n")
	promptText.WriteString(fmt.Sprintf("Total Deals: %d (%d open)\n", summary.Deals, summary.OpenDeals))
	promptText.WriteString(fmt.Sprintf("Total Value: $%.2f\n", summary.TotalValue))
	promptText.WriteString(fmt.Sprintf("Weighted Open Value: $%.2f\n", summary.WeightedValue))
	promptText.WriteString(fmt.Sprintf("Won Value: $%.2f\n\n", summary.WonValue))
	promptText.WriteString("Pipeline by Stage:\n")
	for _, g := range groups {
		promptText.WriteString(fmt.Sprintf("  - %s: %d deals, $%.2f\n", g.Stage.Name, g.Count, g.TotalValue))
	}
	if unmatched := h.board.Unmatched(); len(unmatched) > 0 {
		promptText.WriteString(fmt.Sprintf("\n%d deals have a stage that is not on the board.\n", len(unmatched)))
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Analysis of pipeline health and distribution")
	promptText.WriteString("\n2. Recommendations for deals that may need attention")
	promptText.WriteString("\n3. Suggestions for improving conversion rates")

	return userPrompt("Deal pipeline analysis", promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := 14
	if v, ok := args["days"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid days: %s", v)
		}
		days = n
	}

	activities, err := h.store.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	lastTouch := make(map[int64]time.Time)
	for _, a := range activities {
		if a.DealID == nil {
			continue
		}
		if a.CreatedAt.After(lastTouch[*a.DealID]) {
			lastTouch[*a.DealID] = a.CreatedAt
		}
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("These open deals have had no logged activity in %d days:\n\n", days))
	quiet := 0
	for _, d := range h.board.Deals() {
		if !models.IsValidStage(d.Stage) || models.IsClosedStage(d.Stage) {
			continue
		}
		last, ok := lastTouch[d.ID]
		if ok && last.After(cutoff) {
			continue
		}
		since := "never"
		if ok {
			since = last.Format(dateLayout)
		}
		promptText.WriteString(fmt.Sprintf("  - %s (%s, $%.2f, last activity %s)\n", d.Title, stageName(d.Stage), d.Value, since))
		quiet++
	}
	if quiet == 0 {
		promptText.WriteString("  none, every open deal is active\n")
	}

	promptText.WriteString("\nSuggest a concrete follow-up for each deal, most valuable first.")

	return userPrompt("Follow-up suggestions", promptText.String()), nil
}

func stageName(id string) string {
	if s, ok := models.LookupStage(id); ok {
		return s.Name
	}
	return id
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
