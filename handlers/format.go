// ABOUTME: Shared input parsing and output formatting for MCP handlers
// ABOUTME: Date parsing, timestamp rendering, and optional id handling
package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealboard/models"
)

const dateLayout = "2006-01-02"

// parseDate accepts a plain date or a full RFC3339 timestamp.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format (use YYYY-MM-DD or RFC3339): %w", field, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// optionalID maps the zero id used by tool inputs to "no reference".
func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func stageList() string {
	return strings.Join(models.StageIDs(), ", ")
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
