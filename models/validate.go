// ABOUTME: Field-level validation for CRM records
// ABOUTME: Mirrors the form rules for contacts, deals, tasks, activities, and quotes
package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail applies the loose address check used by the contact form.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func (c *Contact) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(c.FirstName) == "" {
		errs["first_name"] = "first name is required"
	}
	if strings.TrimSpace(c.LastName) == "" {
		errs["last_name"] = "last name is required"
	}
	if strings.TrimSpace(c.Email) == "" {
		errs["email"] = "email is required"
	} else if !IsValidEmail(c.Email) {
		errs["email"] = "email is invalid"
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	return errs.OrNil()
}

func (d *Deal) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(d.Title) == "" {
		errs["title"] = "title is required"
	}
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) || d.Value < 0 {
		errs["value"] = "value must be a non-negative number"
	}
	if !IsValidStage(d.Stage) {
		errs["stage"] = fmt.Sprintf("unknown stage %q", d.Stage)
	}
	if d.Probability < 0 || d.Probability > 100 {
		errs["probability"] = "probability must be between 0 and 100"
	}
	return errs.OrNil()
}

// ApplyDefaults fills in the stage a new deal starts with. Probability is
// left alone: zero is a real answer, so callers resolve an absent value with
// ProbabilityOrDefault before building the deal.
func (d *Deal) ApplyDefaults() {
	if d.Stage == "" {
		d.Stage = StageLead
	}
}

// ProbabilityOrDefault returns p, or DefaultProbability when p was not given.
func ProbabilityOrDefault(p *int) int {
	if p == nil {
		return DefaultProbability
	}
	return *p
}

func (t *Task) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(t.Title) == "" {
		errs["title"] = "title is required"
	}
	if t.DueDate.IsZero() {
		errs["due_date"] = "due date is required"
	}
	if !oneOf(t.Priority, taskPriorities) {
		errs["priority"] = fmt.Sprintf("unknown priority %q", t.Priority)
	}
	if !oneOf(t.Status, taskStatuses) {
		errs["status"] = fmt.Sprintf("unknown status %q", t.Status)
	}
	return errs.OrNil()
}

func (t *Task) ApplyDefaults() {
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskPending
	}
}

func (a *Activity) Validate() error {
	errs := ValidationErrors{}
	if !oneOf(a.Type, activityTypes) {
		errs["type"] = fmt.Sprintf("unknown activity type %q", a.Type)
	}
	if strings.TrimSpace(a.Subject) == "" {
		errs["subject"] = "subject is required"
	}
	if strings.TrimSpace(a.Description) == "" {
		errs["description"] = "description is required"
	}
	return errs.OrNil()
}

func (a *Activity) ApplyDefaults() {
	if a.Type == "" {
		a.Type = ActivityCall
	}
}

func (q *Quote) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(q.Company) == "" {
		errs["company"] = "company is required"
	}
	if q.ContactID == 0 {
		errs["contact_id"] = "contact is required"
	}
	if q.DealID == 0 {
		errs["deal_id"] = "deal is required"
	}
	if q.QuoteDate.IsZero() {
		errs["quote_date"] = "quote date is required"
	}
	if q.ExpiresOn.IsZero() {
		errs["expires_on"] = "expiry date is required"
	} else if !q.QuoteDate.IsZero() && !q.ExpiresOn.After(q.QuoteDate) {
		errs["expires_on"] = "expiry date must be after quote date"
	}
	if !oneOf(q.Status, quoteStatuses) {
		errs["status"] = fmt.Sprintf("unknown status %q", q.Status)
	}
	if !oneOf(q.DeliveryMethod, deliveryMethods) {
		errs["delivery_method"] = fmt.Sprintf("unknown delivery method %q", q.DeliveryMethod)
	}
	return errs.OrNil()
}

func (q *Quote) ApplyDefaults() {
	if q.Status == "" {
		q.Status = QuoteDraft
	}
	if q.DeliveryMethod == "" {
		q.DeliveryMethod = DeliveryEmail
	}
}
