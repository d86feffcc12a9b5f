// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
package cli

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/models"
)

// AddContactCommand adds a new contact.
func AddContactCommand(ctx context.Context, store db.ContactStore, args []string) error {
	fs := newFlagSet("add-contact")
	first := fs.String("first-name", "", "First name (required)")
	last := fs.String("last-name", "", "Last name (required)")
	email := fs.String("email", "", "Email address (required)")
	phone := fs.String("phone", "", "Phone number (required)")
	company := fs.String("company", "", "Company name")
	position := fs.String("position", "", "Job title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contact := &models.Contact{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Phone:     *phone,
		Company:   *company,
		Position:  *position,
	}

	if err := store.CreateContact(ctx, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Contact created: %s (ID: %d)\n", contact.FullName(), contact.ID)
	_, _ = fmt.Fprintf(stdout, "  Email: %s\n", contact.Email)
	_, _ = fmt.Fprintf(stdout, "  Phone: %s\n", contact.Phone)
	if contact.Company != "" {
		_, _ = fmt.Fprintf(stdout, "  Company: %s\n", contact.Company)
	}
	return nil
}

// ListContactsCommand lists contacts, newest first.
func ListContactsCommand(ctx context.Context, store db.ContactStore, args []string) error {
	fs := newFlagSet("list-contacts")
	query := fs.String("query", "", "Search by name, email, or company")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := store.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	var shown []models.Contact
	for i := range contacts {
		if !handlers.ContactMatches(&contacts[i], *query) {
			continue
		}
		shown = append(shown, contacts[i])
		if len(shown) == *limit {
			break
		}
	}

	if len(shown) == 0 {
		_, _ = fmt.Fprintln(stdout, "No contacts found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tCOMPANY\tLAST ACTIVITY\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-------\t-------------\t--")
	for _, c := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			c.FullName(), c.Email, c.Phone, dash(c.Company), formatSince(c.LastActivity), c.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d contact(s)\n", len(shown))
	return nil
}

// UpdateContactCommand changes the fields given on the command line.
func UpdateContactCommand(ctx context.Context, store db.ContactStore, args []string) error {
	fs := newFlagSet("update-contact")
	first := fs.String("first-name", "", "First name")
	last := fs.String("last-name", "", "Last name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	position := fs.String("position", "", "Job title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := positionalID(fs, "contact", "update-contact [flags] <id>")
	if err != nil {
		return err
	}

	existing, err := store.GetContact(ctx, id)
	if err != nil {
		return err
	}

	if *first != "" {
		existing.FirstName = *first
	}
	if *last != "" {
		existing.LastName = *last
	}
	if *email != "" {
		existing.Email = *email
	}
	if *phone != "" {
		existing.Phone = *phone
	}
	if *company != "" {
		existing.Company = *company
	}
	if *position != "" {
		existing.Position = *position
	}

	if err := store.UpdateContact(ctx, existing); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Contact updated: %s (ID: %d)\n", existing.FullName(), id)
	return nil
}

// DeleteContactCommand deletes a contact. Deals keep pointing at it.
func DeleteContactCommand(ctx context.Context, store db.ContactStore, args []string) error {
	fs := newFlagSet("delete-contact")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := positionalID(fs, "contact", "delete-contact <id>")
	if err != nil {
		return err
	}

	if err := store.DeleteContact(ctx, id); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Contact deleted: %d\n", id)
	return nil
}
