// ABOUTME: Shared parsing and printing helpers for CLI commands
// ABOUTME: Id and date flags, money formatting, and the stdout writer tests can swap
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// stdout is where commands print. Tests point it at a buffer.
var stdout io.Writer = os.Stdout

const dateLayout = "2006-01-02"

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", kind, raw)
	}
	return id, nil
}

// positionalID reads the single id argument of commands like delete-deal <id>.
func positionalID(fs *flag.FlagSet, kind, usage string) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return parseID(kind, fs.Arg(0))
}

func parseDate(flagName, raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", flagName, err)
	}
	return t, nil
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func formatMoney(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

// formatSince renders a timestamp relative to now, or "-" when unset.
func formatSince(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return humanize.Time(*t)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}
