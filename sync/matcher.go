// ABOUTME: Contact deduplication and matching logic
// ABOUTME: Finds existing contacts by email to prevent duplicates during sync
package sync

import (
	"strings"

	"github.com/harperreed/dealboard/models"
)

type ContactMatcher struct {
	byEmail map[string]*models.Contact
}

// NewContactMatcher creates a matcher from existing contacts.
func NewContactMatcher(contacts []models.Contact) *ContactMatcher {
	m := &ContactMatcher{
		byEmail: make(map[string]*models.Contact),
	}
	for i := range contacts {
		m.AddContact(&contacts[i])
	}
	return m
}

// FindMatch looks for existing contact by email.
func (m *ContactMatcher) FindMatch(email string) (*models.Contact, bool) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, false
	}
	contact, found := m.byEmail[normalized]
	return contact, found
}

// AddContact records a contact so later rows in the same import match it.
func (m *ContactMatcher) AddContact(contact *models.Contact) {
	if email := normalizeEmail(contact.Email); email != "" {
		m.byEmail[email] = contact
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
