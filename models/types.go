// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Deal, Task, Activity, and Quote structs with their enums
package models

import (
	"strings"
	"time"
)

type Contact struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Company      string     `json:"company,omitempty"`
	Position     string     `json:"position,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FullName joins first and last name, skipping whichever is empty.
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Deal struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Value             float64    `json:"value"`
	Stage             string     `json:"stage"`
	Probability       int        `json:"probability"`
	ContactID         *int64     `json:"contact_id,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Description       string     `json:"description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// DefaultProbability is used for new deals created without a probability.
const DefaultProbability = 10

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	ContactID   *int64    `json:"contact_id,omitempty"`
	DealID      *int64    `json:"deal_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task status constants.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// ToggleComplete flips a task between completed and pending.
func (t *Task) ToggleComplete() {
	if t.Status == TaskCompleted {
		t.Status = TaskPending
		return
	}
	t.Status = TaskCompleted
}

// IsOpen reports whether the task still needs doing.
func (t *Task) IsOpen() bool {
	return t.Status == TaskPending || t.Status == TaskInProgress
}

type Activity struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	ContactID   *int64    `json:"contact_id,omitempty"`
	DealID      *int64    `json:"deal_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity type constants.
const (
	ActivityCall    = "call"
	ActivityEmail   = "email"
	ActivityMeeting = "meeting"
	ActivityNote    = "note"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsZero reports whether no address line is filled in.
func (a Address) IsZero() bool {
	return a == Address{}
}

type Quote struct {
	ID              int64     `json:"id"`
	Company         string    `json:"company"`
	ContactID       int64     `json:"contact_id"`
	DealID          int64     `json:"deal_id"`
	QuoteDate       time.Time `json:"quote_date"`
	ExpiresOn       time.Time `json:"expires_on"`
	Status          string    `json:"status"`
	DeliveryMethod  string    `json:"delivery_method"`
	BillingAddress  Address   `json:"billing_address"`
	ShippingAddress Address   `json:"shipping_address"`
	CreatedAt       time.Time `json:"created_at"`
}

// Quote status constants.
const (
	QuoteDraft    = "Draft"
	QuoteSent     = "Sent"
	QuoteAccepted = "Accepted"
	QuoteRejected = "Rejected"
)

// Quote delivery method constants.
const (
	DeliveryEmail    = "Email"
	DeliveryMail     = "Mail"
	DeliveryInPerson = "In Person"
)

var (
	taskPriorities  = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	taskStatuses    = []string{TaskPending, TaskInProgress, TaskCompleted, TaskCancelled}
	activityTypes   = []string{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote}
	quoteStatuses   = []string{QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected}
	deliveryMethods = []string{DeliveryEmail, DeliveryMail, DeliveryInPerson}
)

func TaskPriorities() []string  { return append([]string(nil), taskPriorities...) }
func TaskStatuses() []string    { return append([]string(nil), taskStatuses...) }
func ActivityTypes() []string   { return append([]string(nil), activityTypes...) }
func QuoteStatuses() []string   { return append([]string(nil), quoteStatuses...) }
func DeliveryMethods() []string { return append([]string(nil), deliveryMethods...) }

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
