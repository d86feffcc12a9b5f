// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/viz"
)

// VizGraphContactsCommand generates a contact network graph, optionally
// centred on one contact.
func VizGraphContactsCommand(ctx context.Context, store viz.GraphStore, args []string) error {
	fs := newFlagSet("viz graph contacts")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var contactID *int64
	if fs.NArg() > 0 {
		id, err := parseID("contact", fs.Arg(0))
		if err != nil {
			return err
		}
		contactID = &id
	}

	dot, err := viz.NewGraphGenerator(store).GenerateContactGraph(ctx, contactID)
	if err != nil {
		return err
	}
	return writeGraph(*output, dot)
}

// VizGraphPipelineCommand generates a deal pipeline graph.
func VizGraphPipelineCommand(ctx context.Context, store viz.GraphStore, args []string) error {
	fs := newFlagSet("viz graph pipeline")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(store).GeneratePipelineGraph(ctx)
	if err != nil {
		return err
	}
	return writeGraph(*output, dot)
}

func writeGraph(output, dot string) error {
	if output != "" {
		return os.WriteFile(output, []byte(dot), 0644)
	}
	_, _ = fmt.Fprintln(stdout, dot)
	return nil
}

func VizDashboardCommand(ctx context.Context, store db.RecordStore, args []string) error {
	stats, err := viz.GenerateDashboardStats(ctx, store, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}

	_, _ = fmt.Fprint(stdout, viz.RenderDashboard(stats))
	return nil
}
