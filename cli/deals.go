// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for managing deals and moving them between stages
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

func stageUsage() string {
	return choices(models.StageIDs())
}

func choices(values []string) string {
	return strings.Join(values, ", ")
}

// AddDealCommand adds a new deal.
func AddDealCommand(ctx context.Context, board *pipeline.Board, args []string) error {
	fs := newFlagSet("add-deal")
	title := fs.String("title", "", "Deal title (required)")
	value := fs.Float64("value", 0, "Deal value")
	stage := fs.String("stage", models.StageLead, "Stage ("+stageUsage()+")")
	probability := fs.Int("probability", models.DefaultProbability, "Win probability 0-100")
	contactID := fs.Int64("contact", 0, "Contact ID")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
	description := fs.String("description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if !models.IsValidStage(*stage) {
		return fmt.Errorf("invalid stage %q (valid: %s)", *stage, stageUsage())
	}

	deal := &models.Deal{
		Title:       *title,
		Value:       *value,
		Stage:       *stage,
		Probability: *probability,
		ContactID:   optionalID(*contactID),
		Description: *description,
	}
	if *closeDate != "" {
		t, err := parseDate("close-date", *closeDate)
		if err != nil {
			return err
		}
		deal.ExpectedCloseDate = &t
	}

	if err := board.CreateDeal(ctx, deal); err != nil {
		return err
	}

	stageInfo, _ := models.LookupStage(deal.Stage)
	_, _ = fmt.Fprintf(stdout, "✓ Deal created: %s (ID: %d)\n", deal.Title, deal.ID)
	_, _ = fmt.Fprintf(stdout, "  Value: %s\n", formatMoney(deal.Value))
	_, _ = fmt.Fprintf(stdout, "  Stage: %s\n", stageInfo.Name)
	_, _ = fmt.Fprintf(stdout, "  Probability: %d%%\n", deal.Probability)
	return nil
}

// ListDealsCommand lists deals, newest first.
func ListDealsCommand(ctx context.Context, board *pipeline.Board, args []string) error {
	fs := newFlagSet("list-deals")
	stage := fs.String("stage", "", "Filter by stage")
	search := fs.String("search", "", "Search title, contact name, or company")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *stage != "" && !models.IsValidStage(*stage) {
		return fmt.Errorf("invalid stage %q (valid: %s)", *stage, stageUsage())
	}

	if err := board.Load(ctx); err != nil {
		return err
	}

	contacts := board.Contacts()
	var deals []models.Deal
	for _, d := range pipeline.FilterDeals(board.Deals(), contacts, *search) {
		if *stage != "" && d.Stage != *stage {
			continue
		}
		deals = append(deals, d)
		if len(deals) == *limit {
			break
		}
	}

	if len(deals) == 0 {
		_, _ = fmt.Fprintln(stdout, "No deals found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "TITLE\tCONTACT\tVALUE\tSTAGE\tPROB\tCLOSE\tID")
	_, _ = fmt.Fprintln(w, "-----\t-------\t-----\t-----\t----\t-----\t--")

	var total float64
	for _, d := range deals {
		contactName := "-"
		if c, ok := board.Contact(d.ContactID); ok {
			contactName = c.FullName()
		}
		stageName := d.Stage
		if s, ok := models.LookupStage(d.Stage); ok {
			stageName = s.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\t%d\n",
			d.Title, contactName, formatMoney(d.Value), stageName, d.Probability, formatDate(d.ExpectedCloseDate), d.ID)
		total += d.Value
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d deal(s) - %s\n", len(deals), formatMoney(total))
	return nil
}

// UpdateDealCommand merges the flags that were given into the stored deal.
func UpdateDealCommand(ctx context.Context, board *pipeline.Board, args []string) error {
	fs := newFlagSet("update-deal")
	title := fs.String("title", "", "Deal title")
	value := fs.Float64("value", 0, "Deal value")
	stage := fs.String("stage", "", "Stage ("+stageUsage()+")")
	probability := fs.Int("probability", 0, "Win probability 0-100")
	contactID := fs.Int64("contact", 0, "Contact ID (0 clears it)")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD, empty clears it)")
	description := fs.String("description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := positionalID(fs, "deal", "update-deal [flags] <id>")
	if err != nil {
		return err
	}

	var patch models.DealPatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "value":
			patch.Value = value
		case "stage":
			patch.Stage = stage
		case "probability":
			patch.Probability = probability
		case "contact":
			if *contactID == 0 {
				patch.ClearContact = true
			} else {
				patch.ContactID = contactID
			}
		case "close-date":
			if *closeDate == "" {
				patch.ClearCloseDate = true
				return
			}
			t, err := parseDate("close-date", *closeDate)
			if err != nil {
				parseErr = err
				return
			}
			patch.ExpectedCloseDate = &t
		case "description":
			patch.Description = description
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update: pass at least one field flag")
	}

	updated, err := board.EditDeal(ctx, id, patch)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Deal updated: %s (ID: %d)\n", updated.Title, updated.ID)
	_, _ = fmt.Fprintf(stdout, "  Changed: %s\n", strings.Join(patch.Fields(), ", "))
	return nil
}

// MoveDealCommand moves a deal to another stage the way a board drag does.
func MoveDealCommand(ctx context.Context, board *pipeline.Board, args []string) error {
	fs := newFlagSet("move-deal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: move-deal <id> <stage>")
	}

	id, err := parseID("deal", fs.Arg(0))
	if err != nil {
		return err
	}
	target := fs.Arg(1)
	if !models.IsValidStage(target) {
		return fmt.Errorf("%w: %q (valid: %s)", pipeline.ErrInvalidStage, target, stageUsage())
	}

	if err := board.Load(ctx); err != nil {
		return err
	}
	deal, ok := board.Deal(id)
	if !ok {
		return &models.NotFoundError{Entity: "deal", ID: id}
	}

	controller := board.NewController()
	if err := controller.Begin(deal); err != nil {
		return err
	}
	res, err := controller.Drop(ctx, target)
	if err != nil {
		var te *pipeline.TransitionError
		if errors.As(err, &te) {
			return fmt.Errorf("failed to update deal stage: %w", te.Err)
		}
		return err
	}

	from, _ := models.LookupStage(res.From)
	to, _ := models.LookupStage(res.To)
	switch res.Outcome {
	case pipeline.OutcomeUnchanged:
		_, _ = fmt.Fprintf(stdout, "Deal %d is already in %s\n", id, to.Name)
	case pipeline.OutcomeMoved:
		_, _ = fmt.Fprintf(stdout, "✓ Moved %s: %s → %s\n", deal.Title, from.Name, to.Name)
	}
	return nil
}

// DeleteDealCommand deletes a deal.
func DeleteDealCommand(ctx context.Context, board *pipeline.Board, args []string) error {
	fs := newFlagSet("delete-deal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := positionalID(fs, "deal", "delete-deal <id>")
	if err != nil {
		return err
	}

	if err := board.DeleteDeal(ctx, id); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Deleted deal: %d\n", id)
	return nil
}
