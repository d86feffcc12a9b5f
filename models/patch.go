// ABOUTME: Partial deal updates with merge semantics
// ABOUTME: Only the fields set on a DealPatch overwrite the stored deal
package models

import "time"

// DealPatch carries the fields a caller wants to change. Nil fields are left alone.
type DealPatch struct {
	Title             *string    `json:"title,omitempty"`
	Value             *float64   `json:"value,omitempty"`
	Stage             *string    `json:"stage,omitempty"`
	Probability       *int       `json:"probability,omitempty"`
	ContactID         *int64     `json:"contact_id,omitempty"`
	ClearContact      bool       `json:"clear_contact,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	ClearCloseDate    bool       `json:"clear_close_date,omitempty"`
	Description       *string    `json:"description,omitempty"`
}

// StagePatch builds the patch a board transition sends: the stage and nothing else.
func StagePatch(stage string) DealPatch {
	return DealPatch{Stage: &stage}
}

// Apply returns a copy of d with the patch merged in. ID and CreatedAt never change.
func (p DealPatch) Apply(d Deal) Deal {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Probability != nil {
		d.Probability = *p.Probability
	}
	if p.ClearContact {
		d.ContactID = nil
	} else if p.ContactID != nil {
		id := *p.ContactID
		d.ContactID = &id
	}
	if p.ClearCloseDate {
		d.ExpectedCloseDate = nil
	} else if p.ExpectedCloseDate != nil {
		t := *p.ExpectedCloseDate
		d.ExpectedCloseDate = &t
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}

// Fields lists the names of the fields the patch touches.
func (p DealPatch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Value != nil {
		fields = append(fields, "value")
	}
	if p.Stage != nil {
		fields = append(fields, "stage")
	}
	if p.Probability != nil {
		fields = append(fields, "probability")
	}
	if p.ContactID != nil || p.ClearContact {
		fields = append(fields, "contact_id")
	}
	if p.ExpectedCloseDate != nil || p.ClearCloseDate {
		fields = append(fields, "expected_close_date")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	return fields
}

// IsEmpty reports whether applying the patch would change nothing.
func (p DealPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}
