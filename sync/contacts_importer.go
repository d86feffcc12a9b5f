// ABOUTME: Google Contacts API importer
// ABOUTME: Pages through People API connections and creates or fills in CRM contacts
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"google.golang.org/api/people/v1"
)

type GoogleContact struct {
	ResourceName string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Company      string
	JobTitle     string
}

// ImportResult summarises one import run.
type ImportResult struct {
	Fetched int
	Created int
	Updated int
	Skipped int
}

type ContactsImporter struct {
	store   db.ContactStore
	matcher *ContactMatcher
	logger  *log.Logger
}

// NewContactsImporter loads the existing contacts once so matching stays in memory.
func NewContactsImporter(ctx context.Context, store db.ContactStore, logger *log.Logger) (*ContactsImporter, error) {
	existing, err := store.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing contacts: %w", err)
	}
	return &ContactsImporter{
		store:   store,
		matcher: NewContactMatcher(existing),
		logger:  logger,
	}, nil
}

// ImportContact creates the contact or fills gaps on the one it matches.
// It reports whether a new contact was created and whether anything changed.
func (ci *ContactsImporter) ImportContact(ctx context.Context, gc *GoogleContact) (created, changed bool, err error) {
	if existing, found := ci.matcher.FindMatch(gc.Email); found {
		changed, err := ci.updateContact(ctx, existing.ID, gc)
		return false, changed, err
	}

	contact := &models.Contact{
		FirstName: gc.FirstName,
		LastName:  gc.LastName,
		Email:     gc.Email,
		Phone:     gc.Phone,
		Company:   gc.Company,
		Position:  gc.JobTitle,
	}
	if err := ci.store.CreateContact(ctx, contact); err != nil {
		return false, false, fmt.Errorf("failed to create contact: %w", err)
	}
	ci.matcher.AddContact(contact)
	return true, true, nil
}

// updateContact only fills fields the CRM copy is missing.
func (ci *ContactsImporter) updateContact(ctx context.Context, id int64, gc *GoogleContact) (bool, error) {
	fresh, err := ci.store.GetContact(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load contact: %w", err)
	}

	updated := false
	if gc.Phone != "" && fresh.Phone == "" {
		fresh.Phone = gc.Phone
		updated = true
	}
	if gc.Company != "" && fresh.Company == "" {
		fresh.Company = gc.Company
		updated = true
	}
	if gc.JobTitle != "" && fresh.Position == "" {
		fresh.Position = gc.JobTitle
		updated = true
	}
	if !updated {
		return false, nil
	}

	if err := ci.store.UpdateContact(ctx, fresh); err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	ci.matcher.AddContact(fresh)
	return true, nil
}

// ImportContacts fetches every page from source and imports each person.
// Rows the contact form would reject are logged and skipped.
func ImportContacts(ctx context.Context, store db.ContactStore, source PeopleSource, logger *log.Logger) (ImportResult, error) {
	var result ImportResult

	importer, err := NewContactsImporter(ctx, store, logger)
	if err != nil {
		return result, err
	}

	pageToken := ""
	for {
		response, err := source.ListConnections(ctx, pageToken)
		if err != nil {
			return result, fmt.Errorf("failed to fetch contacts: %w", err)
		}
		if response == nil {
			break
		}

		result.Fetched += len(response.Connections)
		for _, person := range response.Connections {
			gc := convertPerson(person)
			if gc.Email == "" || gc.FirstName == "" {
				result.Skipped++
				continue
			}

			created, changed, err := importer.ImportContact(ctx, gc)
			if err != nil {
				if errors.Is(err, models.ErrValidation) {
					logger.Warn("skipping google contact", "resource", gc.ResourceName, "err", err)
					result.Skipped++
					continue
				}
				return result, err
			}
			switch {
			case created:
				result.Created++
			case changed:
				result.Updated++
			}
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
		logger.Debug("fetched contacts page", "fetched", result.Fetched)
	}

	logger.Info("google contacts imported",
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped)
	return result, nil
}

// convertPerson converts a People API Person to GoogleContact.
func convertPerson(person *people.Person) *GoogleContact {
	gc := &GoogleContact{ResourceName: person.ResourceName}

	if len(person.Names) > 0 {
		name := person.Names[0]
		gc.FirstName, gc.LastName = name.GivenName, name.FamilyName
		if gc.FirstName == "" && name.DisplayName != "" {
			gc.FirstName, gc.LastName, _ = strings.Cut(strings.TrimSpace(name.DisplayName), " ")
		}
	}

	gc.Email = primaryValue(person.EmailAddresses, func(e *people.EmailAddress) (string, *people.FieldMetadata) {
		return e.Value, e.Metadata
	})
	gc.Phone = primaryValue(person.PhoneNumbers, func(p *people.PhoneNumber) (string, *people.FieldMetadata) {
		return p.Value, p.Metadata
	})

	if len(person.Organizations) > 0 {
		gc.Company = person.Organizations[0].Name
		gc.JobTitle = person.Organizations[0].Title
	}

	return gc
}

// primaryValue prefers the entry flagged primary, else the first non-empty one.
func primaryValue[T any](items []*T, get func(*T) (string, *people.FieldMetadata)) string {
	first := ""
	for _, item := range items {
		value, meta := get(item)
		if value == "" {
			continue
		}
		if meta != nil && meta.Primary {
			return value
		}
		if first == "" {
			first = value
		}
	}
	return first
}
