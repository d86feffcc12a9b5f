// ABOUTME: Demo data for the in-memory backend
// ABOUTME: Populates a record store with a small pipeline spread across every stage
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealboard/models"
)

// SeedDemoData writes a handful of contacts, deals, tasks and activities.
func SeedDemoData(ctx context.Context, store RecordStore) error {
	contacts := []*models.Contact{
		{FirstName: "Sarah", LastName: "Chen", Email: "sarah.chen@northwind.io", Phone: "555-0101", Company: "Northwind", Position: "VP Operations"},
		{FirstName: "Marcus", LastName: "Webb", Email: "marcus@brightline.co", Phone: "555-0102", Company: "Brightline", Position: "CTO"},
		{FirstName: "Priya", LastName: "Raman", Email: "priya.raman@larkspur.com", Phone: "555-0103", Company: "Larkspur", Position: "Head of Sales"},
	}
	for _, c := range contacts {
		if err := store.CreateContact(ctx, c); err != nil {
			return fmt.Errorf("failed to seed contact: %w", err)
		}
	}

	inDays := func(n int) *time.Time {
		t := time.Now().AddDate(0, 0, n).Truncate(24 * time.Hour)
		return &t
	}

	deals := []*models.Deal{
		{Title: "Warehouse analytics pilot", Value: 12000, Stage: models.StageLead, Probability: 10, ContactID: &contacts[0].ID, ExpectedCloseDate: inDays(60)},
		{Title: "Fleet tracking rollout", Value: 48000, Stage: models.StageQualified, Probability: 30, ContactID: &contacts[1].ID, ExpectedCloseDate: inDays(45)},
		{Title: "Support retainer", Value: 9000, Stage: models.StageProposal, Probability: 55, ContactID: &contacts[2].ID, ExpectedCloseDate: inDays(20)},
		{Title: "Data migration", Value: 27500, Stage: models.StageNegotiation, Probability: 80, ContactID: &contacts[1].ID, ExpectedCloseDate: inDays(10)},
		{Title: "Annual license renewal", Value: 15000, Stage: models.StageClosedWon, Probability: 100, ContactID: &contacts[0].ID},
		{Title: "Hardware refresh", Value: 33000, Stage: models.StageClosedLost, Probability: 5, ContactID: &contacts[2].ID},
	}
	for _, d := range deals {
		if err := store.CreateDeal(ctx, d); err != nil {
			return fmt.Errorf("failed to seed deal: %w", err)
		}
	}

	tasks := []*models.Task{
		{Title: "Send pilot scope", DueDate: *inDays(2), Priority: models.PriorityHigh, ContactID: &contacts[0].ID, DealID: &deals[0].ID},
		{Title: "Book negotiation call", DueDate: *inDays(5), Priority: models.PriorityUrgent, ContactID: &contacts[1].ID, DealID: &deals[3].ID},
	}
	for _, t := range tasks {
		if err := store.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("failed to seed task: %w", err)
		}
	}

	activities := []*models.Activity{
		{Type: models.ActivityCall, Subject: "Discovery call", Description: "Walked through current reporting gaps", ContactID: &contacts[0].ID, DealID: &deals[0].ID},
		{Type: models.ActivityMeeting, Subject: "Pricing review", Description: "Agreed on phased payment schedule", ContactID: &contacts[1].ID, DealID: &deals[3].ID},
	}
	for _, a := range activities {
		if err := store.CreateActivity(ctx, a); err != nil {
			return fmt.Errorf("failed to seed activity: %w", err)
		}
	}

	return nil
}
