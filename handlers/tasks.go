// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements add_task, list_tasks, and toggle_task tools
package handlers

import (
	"context"
	"fmt"
	"sort"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TaskHandlers struct {
	store db.TaskStore
}

func NewTaskHandlers(store db.TaskStore) *TaskHandlers {
	return &TaskHandlers{store: store}
}

type AddTaskInput struct {
	Title       string `json:"title" jsonschema:"Task title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Task details"`
	DueDate     string `json:"due_date" jsonschema:"Due date (YYYY-MM-DD, required)"`
	Priority    string `json:"priority,omitempty" jsonschema:"Priority (default medium)"`
	Status      string `json:"status,omitempty" jsonschema:"Status (default pending)"`
	ContactID   int64  `json:"contact_id,omitempty" jsonschema:"Related contact ID"`
	DealID      int64  `json:"deal_id,omitempty" jsonschema:"Related deal ID"`
}

type TaskOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	ContactID   *int64 `json:"contact_id,omitempty"`
	DealID      *int64 `json:"deal_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (h *TaskHandlers) AddTask(ctx context.Context, request *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.Title == "" {
		return nil, TaskOutput{}, fmt.Errorf("title is required")
	}
	if input.DueDate == "" {
		return nil, TaskOutput{}, fmt.Errorf("due_date is required")
	}

	due, err := parseDate("due_date", input.DueDate)
	if err != nil {
		return nil, TaskOutput{}, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Priority:    input.Priority,
		Status:      input.Status,
		ContactID:   optionalID(input.ContactID),
		DealID:      optionalID(input.DealID),
	}

	if err := h.store.CreateTask(ctx, task); err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to create task: %w", err)
	}

	return nil, taskToOutput(task), nil
}

type ListTasksInput struct {
	Status   string `json:"status,omitempty" jsonschema:"Only tasks with this status"`
	OpenOnly bool   `json:"open_only,omitempty" jsonschema:"Only pending and in-progress tasks"`
	DealID   int64  `json:"deal_id,omitempty" jsonschema:"Only tasks for this deal"`
	Query    string `json:"query,omitempty" jsonschema:"Search text matched against title and description"`
}

type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

// ListTasks returns matching tasks ordered by due date, soonest first.
func (h *TaskHandlers) ListTasks(ctx context.Context, request *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	tasks, err := h.store.ListTasks(ctx)
	if err != nil {
		return nil, ListTasksOutput{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	filter := TaskFilter{Status: input.Status, OpenOnly: input.OpenOnly, DealID: input.DealID, Query: input.Query}
	if err := filter.Validate(); err != nil {
		return nil, ListTasksOutput{}, err
	}

	matched := FilterTasks(tasks, filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DueDate.Before(matched[j].DueDate)
	})

	output := ListTasksOutput{Tasks: make([]TaskOutput, 0, len(matched))}
	for i := range matched {
		output.Tasks = append(output.Tasks, taskToOutput(&matched[i]))
	}
	output.Count = len(output.Tasks)

	return nil, output, nil
}

type ToggleTaskInput struct {
	ID int64 `json:"id" jsonschema:"Task ID (required)"`
}

func (h *TaskHandlers) ToggleTask(ctx context.Context, request *mcp.CallToolRequest, input ToggleTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.ID == 0 {
		return nil, TaskOutput{}, fmt.Errorf("id is required")
	}

	task, err := db.ToggleTask(ctx, h.store, input.ID)
	if err != nil {
		return nil, TaskOutput{}, err
	}

	return nil, taskToOutput(task), nil
}

func taskToOutput(task *models.Task) TaskOutput {
	return TaskOutput{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.Format(dateLayout),
		Priority:    task.Priority,
		Status:      task.Status,
		ContactID:   task.ContactID,
		DealID:      task.DealID,
		CreatedAt:   formatTime(task.CreatedAt),
	}
}
