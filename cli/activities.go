// ABOUTME: Activity CLI commands
// ABOUTME: Log calls, emails, meetings, and notes against contacts and deals
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/models"
)

// LogActivityCommand records an activity and stamps the contact's last activity.
func LogActivityCommand(ctx context.Context, store handlers.ActivityStore, args []string) error {
	fs := newFlagSet("log-activity")
	kind := fs.String("type", models.ActivityCall, "Type ("+choices(models.ActivityTypes())+")")
	subject := fs.String("subject", "", "Subject (required)")
	description := fs.String("description", "", "What happened (required)")
	contactID := fs.Int64("contact", 0, "Contact ID")
	dealID := fs.Int64("deal", 0, "Deal ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	activity := &models.Activity{
		Type:        *kind,
		Subject:     *subject,
		Description: *description,
		ContactID:   optionalID(*contactID),
		DealID:      optionalID(*dealID),
		CreatedAt:   time.Now(),
	}
	if err := store.CreateActivity(ctx, activity); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	if err := handlers.TouchContact(ctx, store, activity.ContactID, activity.CreatedAt); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Logged %s: %s (ID: %d)\n", activity.Type, activity.Subject, activity.ID)
	return nil
}

// ListActivitiesCommand shows recent activities, newest first.
func ListActivitiesCommand(ctx context.Context, store handlers.ActivityStore, args []string) error {
	fs := newFlagSet("list-activities")
	contactID := fs.Int64("contact", 0, "Only activities for this contact")
	dealID := fs.Int64("deal", 0, "Only activities for this deal")
	kind := fs.String("type", "", "Only activities of this type ("+choices(models.ActivityTypes())+")")
	search := fs.String("search", "", "Match subject or description")
	limit := fs.Int("limit", 20, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := handlers.ActivityFilter{Type: *kind, ContactID: *contactID, DealID: *dealID, Query: *search}
	if err := filter.Validate(); err != nil {
		return err
	}

	activities, err := store.ListActivities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "WHEN\tTYPE\tSUBJECT\tID")
	_, _ = fmt.Fprintln(w, "----\t----\t-------\t--")
	count := 0
	for _, a := range handlers.FilterActivities(activities, filter) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", a.CreatedAt.Format("2006-01-02 15:04"), a.Type, a.Subject, a.ID)
		count++
		if count == *limit {
			break
		}
	}

	if count == 0 {
		_, _ = fmt.Fprintln(stdout, "No activities found")
		return nil
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d activities\n", count)
	return nil
}
