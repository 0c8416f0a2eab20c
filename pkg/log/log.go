// Package log builds the [slog.Handler] used for diagnostics.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

const (
	TextFormat   = "text"
	LogfmtFormat = "logfmt"
	JSONFormat   = "json"
)

// Formats lists the accepted log formats.
var Formats = []string{TextFormat, LogfmtFormat, JSONFormat}

// Levels lists the accepted log levels.
var Levels = []string{"debug", "info", "warn", "error"}

// GetLevel parses a level name. Unknown names yield an error.
func GetLevel(level string) (charmlog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return charmlog.DebugLevel, nil
	case "info", "":
		return charmlog.InfoLevel, nil
	case "warn", "warning":
		return charmlog.WarnLevel, nil
	case "error", "fatal", "panic":
		return charmlog.ErrorLevel, nil
	}

	return charmlog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// GetFormatter parses a format name. Unknown names yield an error.
func GetFormatter(format string) (charmlog.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case TextFormat, "":
		return charmlog.TextFormatter, nil
	case LogfmtFormat:
		return charmlog.LogfmtFormatter, nil
	case JSONFormat:
		return charmlog.JSONFormatter, nil
	}

	return charmlog.TextFormatter, fmt.Errorf("unknown log format %q", format)
}

// CreateHandlerWithStrings creates a [slog.Handler] writing to w.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}

	formatter, err := GetFormatter(logFormat)
	if err != nil {
		return nil, err
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: formatter != charmlog.TextFormatter,
		Prefix:          "verbump",
	}), nil
}
