// ABOUTME: Pipeline export CLI commands
// ABOUTME: Writes board snapshots to a directory or S3 bucket and lists past ones
package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/dealboard/config"
	"github.com/harperreed/dealboard/export"
	"github.com/harperreed/dealboard/pipeline"
)

// OpenBlobStore picks S3 when a bucket is configured, the export directory
// otherwise.
func OpenBlobStore(ctx context.Context, cfg config.ExportConfig) (export.BlobStore, error) {
	if cfg.S3.Bucket != "" {
		return export.NewS3Store(ctx, export.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	}
	return export.NewFSStore(cfg.Dir)
}

// ExportCommand writes one snapshot of the board.
func ExportCommand(ctx context.Context, board *pipeline.Board, blobs export.BlobStore, args []string) error {
	fs := newFlagSet("export")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, info, err := export.NewExporter(blobs).Export(ctx, board)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Snapshot %s written to %s/%s (%s)\n",
		snap.ID, blobs.Location(), info.Key, humanize.Bytes(uint64(info.Size)))
	_, _ = fmt.Fprintf(stdout, "  %d deals, %s open, %s won\n",
		snap.Summary.Deals, formatMoney(snap.Summary.OpenValue), formatMoney(snap.Summary.WonValue))
	return nil
}

// ExportListCommand lists stored snapshots, oldest first.
func ExportListCommand(ctx context.Context, blobs export.BlobStore, args []string) error {
	fs := newFlagSet("export list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	infos, err := export.NewExporter(blobs).List(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		_, _ = fmt.Fprintf(stdout, "No snapshots in %s\n", blobs.Location())
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "KEY\tSIZE\tWRITTEN")
	for _, info := range infos {
		written := "-"
		if !info.LastModified.IsZero() {
			written = humanize.Time(info.LastModified)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", info.Key, humanize.Bytes(uint64(info.Size)), written)
	}
	return w.Flush()
}
