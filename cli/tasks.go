// ABOUTME: Task CLI commands
// ABOUTME: Add, list by due date, and toggle completion of follow-up tasks
package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/models"
)

// AddTaskCommand adds a task.
func AddTaskCommand(ctx context.Context, store db.TaskStore, args []string) error {
	fs := newFlagSet("add-task")
	title := fs.String("title", "", "Task title (required)")
	due := fs.String("due", "", "Due date YYYY-MM-DD (required)")
	priority := fs.String("priority", models.PriorityMedium, "Priority ("+choices(models.TaskPriorities())+")")
	description := fs.String("description", "", "Description")
	contactID := fs.Int64("contact", 0, "Contact ID")
	dealID := fs.Int64("deal", 0, "Deal ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *due == "" {
		return fmt.Errorf("--due is required")
	}
	dueDate, err := parseDate("due", *due)
	if err != nil {
		return err
	}

	task := &models.Task{
		Title:       *title,
		Description: *description,
		DueDate:     dueDate,
		Priority:    *priority,
		ContactID:   optionalID(*contactID),
		DealID:      optionalID(*dealID),
	}
	if err := store.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Task created: %s (ID: %d)\n", task.Title, task.ID)
	_, _ = fmt.Fprintf(stdout, "  Due: %s  Priority: %s\n", task.DueDate.Format(dateLayout), task.Priority)
	return nil
}

// ListTasksCommand lists tasks, soonest due first.
func ListTasksCommand(ctx context.Context, store db.TaskStore, args []string) error {
	fs := newFlagSet("list-tasks")
	all := fs.Bool("all", false, "Include completed and cancelled tasks")
	dealID := fs.Int64("deal", 0, "Only tasks for this deal")
	status := fs.String("status", "", "Only tasks with this status ("+choices(models.TaskStatuses())+")")
	search := fs.String("search", "", "Match title or description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := handlers.TaskFilter{
		Status:   *status,
		OpenOnly: !*all && *status == "",
		DealID:   *dealID,
		Query:    *search,
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	tasks, err := store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	shown := handlers.FilterTasks(tasks, filter)
	sort.SliceStable(shown, func(i, j int) bool { return shown[i].DueDate.Before(shown[j].DueDate) })

	if len(shown) == 0 {
		_, _ = fmt.Fprintln(stdout, "No tasks found")
		return nil
	}

	now := time.Now()
	w := newTable()
	_, _ = fmt.Fprintln(w, "DUE\tTITLE\tPRIORITY\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "---\t-----\t--------\t------\t--")
	for _, t := range shown {
		due := t.DueDate.Format(dateLayout)
		if t.IsOpen() && t.DueDate.Before(now) {
			due += " (overdue)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", due, t.Title, t.Priority, t.Status, t.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d task(s)\n", len(shown))
	return nil
}

// ToggleTaskCommand flips a task between completed and pending.
func ToggleTaskCommand(ctx context.Context, store db.TaskStore, args []string) error {
	fs := newFlagSet("toggle-task")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := positionalID(fs, "task", "toggle-task <id>")
	if err != nil {
		return err
	}

	task, err := db.ToggleTask(ctx, store, id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Task %d is now %s\n", task.ID, task.Status)
	return nil
}
