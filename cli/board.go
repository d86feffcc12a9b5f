// ABOUTME: Pipeline board CLI command
// ABOUTME: Opens the interactive board on a terminal, prints stage columns otherwise
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/dealboard/pipeline"
	"github.com/harperreed/dealboard/tui"
	"github.com/harperreed/dealboard/viz"
	"golang.org/x/term"
)

// BoardCommand shows the pipeline board. --plain forces text output.
func BoardCommand(ctx context.Context, board *pipeline.Board, graphs viz.GraphStore, args []string) error {
	fs := newFlagSet("board")
	plain := fs.Bool("plain", false, "Print columns instead of opening the interactive board")
	search := fs.String("search", "", "Only show deals matching title, contact name, or company")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*plain && term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.Run(ctx, board, graphs)
	}
	return PrintBoard(ctx, board, *search)
}

// PrintBoard writes one block per stage with its deals.
func PrintBoard(ctx context.Context, board *pipeline.Board, search string) error {
	if err := board.Load(ctx); err != nil {
		return err
	}

	columns := board.Columns(search)
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprintln(stdout)
		}
		_, _ = fmt.Fprintf(stdout, "%s (%d) %s\n", col.Stage.Name, col.Count, formatMoney(col.TotalValue))
		if col.Empty() {
			_, _ = fmt.Fprintln(stdout, "  No deals in this stage")
			continue
		}
		for _, card := range col.Cards {
			line := fmt.Sprintf("  #%d %s  %s  %d%%", card.Deal.ID, card.Deal.Title, formatMoney(card.Deal.Value), card.Deal.Probability)
			if card.ContactName != "" {
				line += "  " + card.ContactName
				if card.Company != "" {
					line += " (" + card.Company + ")"
				}
			}
			_, _ = fmt.Fprintln(stdout, line)
		}
	}

	summary := pipeline.Summarize(board.Groups())
	_, _ = fmt.Fprintf(stdout, "\n%d deals, %s open, %s won\n", summary.Deals, formatMoney(summary.OpenValue), formatMoney(summary.WonValue))
	if n := len(board.Unmatched()); n > 0 {
		_, _ = fmt.Fprintf(stdout, "%d deals with an unknown stage are hidden\n", n)
	}
	return nil
}
