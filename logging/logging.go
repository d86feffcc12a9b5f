// ABOUTME: Builds the structured logger shared by every dealboard surface
// ABOUTME: Wraps charmbracelet/log with level and format selection from config
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level. Format is text,
// json, or logfmt; empty means text.
func New(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "dealboard",
	})

	switch strings.ToLower(format) {
	case "", "text":
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}

// Discard is a logger that drops everything, for tests and library defaults.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func parseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
