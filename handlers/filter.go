// ABOUTME: Shared list filters for tasks, activities, and quotes
// ABOUTME: Used by the MCP tools, the web API, and the CLI so every surface searches the same fields
package handlers

import (
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/models"
)

// TaskFilter narrows a task list. Zero fields match everything.
type TaskFilter struct {
	Status   string
	OpenOnly bool
	DealID   int64
	Query    string
}

func (f TaskFilter) Validate() error {
	return checkChoice("status", f.Status, models.TaskStatuses())
}

// Matches searches title and description case-insensitively.
func (f TaskFilter) Matches(t *models.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.OpenOnly && !t.IsOpen() {
		return false
	}
	if f.DealID != 0 && (t.DealID == nil || *t.DealID != f.DealID) {
		return false
	}
	return containsAny(f.Query, t.Title, t.Description)
}

func FilterTasks(tasks []models.Task, f TaskFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if f.Matches(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// ActivityFilter narrows an activity list. Zero fields match everything.
type ActivityFilter struct {
	Type      string
	ContactID int64
	DealID    int64
	Query     string
}

func (f ActivityFilter) Validate() error {
	return checkChoice("type", f.Type, models.ActivityTypes())
}

// Matches searches subject and description case-insensitively.
func (f ActivityFilter) Matches(a *models.Activity) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.ContactID != 0 && (a.ContactID == nil || *a.ContactID != f.ContactID) {
		return false
	}
	if f.DealID != 0 && (a.DealID == nil || *a.DealID != f.DealID) {
		return false
	}
	return containsAny(f.Query, a.Subject, a.Description)
}

func FilterActivities(activities []models.Activity, f ActivityFilter) []models.Activity {
	out := make([]models.Activity, 0, len(activities))
	for i := range activities {
		if f.Matches(&activities[i]) {
			out = append(out, activities[i])
		}
	}
	return out
}

// QuoteFilter narrows a quote list. Zero fields match everything.
type QuoteFilter struct {
	DealID int64
	Status string
	Query  string
}

func (f QuoteFilter) Validate() error {
	return checkChoice("status", f.Status, models.QuoteStatuses())
}

// Matches searches company, status, and the quoted contact's name. A quote
// whose contact is gone can still match on company or status.
func (f QuoteFilter) Matches(q *models.Quote, contacts map[int64]models.Contact) bool {
	if f.DealID != 0 && q.DealID != f.DealID {
		return false
	}
	if f.Status != "" && q.Status != f.Status {
		return false
	}
	contactName := ""
	if c, ok := contacts[q.ContactID]; ok {
		contactName = c.FullName()
	}
	return containsAny(f.Query, q.Company, q.Status, contactName)
}

func FilterQuotes(quotes []models.Quote, contacts map[int64]models.Contact, f QuoteFilter) []models.Quote {
	out := make([]models.Quote, 0, len(quotes))
	for i := range quotes {
		if f.Matches(&quotes[i], contacts) {
			out = append(out, quotes[i])
		}
	}
	return out
}

// ContactIndex keys contacts by id for quote search.
func ContactIndex(contacts []models.Contact) map[int64]models.Contact {
	byID := make(map[int64]models.Contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}
	return byID
}

func containsAny(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func checkChoice(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return models.ValidationErrors{field: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", "))}
}
