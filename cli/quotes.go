// ABOUTME: Quote CLI commands
// ABOUTME: Create quotes for deals and list them by deal or status
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/models"
)

// AddQuoteCommand creates a quote for a deal.
func AddQuoteCommand(ctx context.Context, store db.QuoteStore, args []string) error {
	fs := newFlagSet("add-quote")
	company := fs.String("company", "", "Company being quoted (required)")
	contactID := fs.Int64("contact", 0, "Contact ID (required)")
	dealID := fs.Int64("deal", 0, "Deal ID (required)")
	quoteDate := fs.String("date", "", "Quote date YYYY-MM-DD (default today)")
	expires := fs.String("expires", "", "Expiry date YYYY-MM-DD (required)")
	delivery := fs.String("delivery", models.DeliveryEmail, "Delivery method ("+choices(models.DeliveryMethods())+")")
	street := fs.String("street", "", "Billing street")
	city := fs.String("city", "", "Billing city")
	state := fs.String("state", "", "Billing state")
	zip := fs.String("zip", "", "Billing postal code")
	country := fs.String("country", "", "Billing country")
	if err := fs.Parse(args); err != nil {
		return err
	}

	y, m, d := time.Now().Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	if *quoteDate != "" {
		t, err := parseDate("date", *quoteDate)
		if err != nil {
			return err
		}
		date = t
	}
	if *expires == "" {
		return fmt.Errorf("--expires is required")
	}
	expiresOn, err := parseDate("expires", *expires)
	if err != nil {
		return err
	}

	billing := models.Address{Street: *street, City: *city, State: *state, Zip: *zip, Country: *country}
	quote := &models.Quote{
		Company:         *company,
		ContactID:       *contactID,
		DealID:          *dealID,
		QuoteDate:       date,
		ExpiresOn:       expiresOn,
		DeliveryMethod:  *delivery,
		BillingAddress:  billing,
		ShippingAddress: billing,
	}
	if err := store.CreateQuote(ctx, quote); err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Quote created for %s (ID: %d)\n", quote.Company, quote.ID)
	_, _ = fmt.Fprintf(stdout, "  Deal: %d  Expires: %s  Status: %s\n", quote.DealID, quote.ExpiresOn.Format(dateLayout), quote.Status)
	return nil
}

// ListQuotesCommand lists quotes, newest first.
func ListQuotesCommand(ctx context.Context, store handlers.QuoteStore, args []string) error {
	fs := newFlagSet("list-quotes")
	dealID := fs.Int64("deal", 0, "Only quotes for this deal")
	status := fs.String("status", "", "Only quotes with this status ("+choices(models.QuoteStatuses())+")")
	search := fs.String("search", "", "Match company, status, or contact name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := handlers.QuoteFilter{DealID: *dealID, Status: *status, Query: *search}
	if err := filter.Validate(); err != nil {
		return err
	}

	quotes, err := store.ListQuotes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list quotes: %w", err)
	}
	contacts, err := store.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	shown := handlers.FilterQuotes(quotes, handlers.ContactIndex(contacts), filter)

	if len(shown) == 0 {
		_, _ = fmt.Fprintln(stdout, "No quotes found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "COMPANY\tDEAL\tDATE\tEXPIRES\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "-------\t----\t----\t-------\t------\t--")
	for _, q := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\n",
			q.Company, q.DealID, q.QuoteDate.Format(dateLayout), q.ExpiresOn.Format(dateLayout), q.Status, q.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d quote(s)\n", len(shown))
	return nil
}
