// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_activity and list_activities, stamping contact last activity
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ActivityStore is what logging an activity touches.
type ActivityStore interface {
	db.ActivityStore
	db.ContactStore
}

type ActivityHandlers struct {
	store ActivityStore
	now   func() time.Time
}

func NewActivityHandlers(store ActivityStore) *ActivityHandlers {
	return &ActivityHandlers{store: store, now: time.Now}
}

type LogActivityInput struct {
	Type        string `json:"type,omitempty" jsonschema:"Activity type (default call)"`
	Subject     string `json:"subject" jsonschema:"Short subject (required)"`
	Description string `json:"description" jsonschema:"What happened (required)"`
	ContactID   int64  `json:"contact_id,omitempty" jsonschema:"Contact involved"`
	DealID      int64  `json:"deal_id,omitempty" jsonschema:"Deal involved"`
}

type ActivityOutput struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	ContactID   *int64 `json:"contact_id,omitempty"`
	DealID      *int64 `json:"deal_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, request *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	activity := &models.Activity{
		Type:        input.Type,
		Subject:     input.Subject,
		Description: input.Description,
		ContactID:   optionalID(input.ContactID),
		DealID:      optionalID(input.DealID),
	}

	if err := h.store.CreateActivity(ctx, activity); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	if err := TouchContact(ctx, h.store, activity.ContactID, h.now()); err != nil {
		return nil, ActivityOutput{}, err
	}

	return nil, activityToOutput(activity), nil
}

// TouchContact records an interaction time on the contact. A reference to a
// deleted contact is skipped.
func TouchContact(ctx context.Context, store db.ContactStore, id *int64, at time.Time) error {
	if id == nil {
		return nil
	}
	contact, err := store.GetContact(ctx, *id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get contact: %w", err)
	}
	contact.LastActivity = &at
	if err := store.UpdateContact(ctx, contact); err != nil {
		return fmt.Errorf("failed to update contact last activity: %w", err)
	}
	return nil
}

type ListActivitiesInput struct {
	ContactID int64  `json:"contact_id,omitempty" jsonschema:"Only activities for this contact"`
	DealID    int64  `json:"deal_id,omitempty" jsonschema:"Only activities for this deal"`
	Type      string `json:"type,omitempty" jsonschema:"Only activities of this type"`
	Query     string `json:"query,omitempty" jsonschema:"Search text matched against subject and description"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results (default 20)"`
}

type ListActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
	Count      int              `json:"count"`
}

func (h *ActivityHandlers) ListActivities(ctx context.Context, request *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := ActivityFilter{Type: input.Type, ContactID: input.ContactID, DealID: input.DealID, Query: input.Query}
	if err := filter.Validate(); err != nil {
		return nil, ListActivitiesOutput{}, err
	}

	activities, err := h.store.ListActivities(ctx)
	if err != nil {
		return nil, ListActivitiesOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}

	output := ListActivitiesOutput{Activities: []ActivityOutput{}}
	for i := range activities {
		a := &activities[i]
		if !filter.Matches(a) {
			continue
		}
		output.Activities = append(output.Activities, activityToOutput(a))
		if len(output.Activities) == limit {
			break
		}
	}
	output.Count = len(output.Activities)

	return nil, output, nil
}

func activityToOutput(a *models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:          a.ID,
		Type:        a.Type,
		Subject:     a.Subject,
		Description: a.Description,
		ContactID:   a.ContactID,
		DealID:      a.DealID,
		CreatedAt:   formatTime(a.CreatedAt),
	}
}
