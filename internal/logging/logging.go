// Package logging builds the zerolog loggers used by the equity commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the named level. format is "console" for
// human-readable output or "json" for structured output.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
		zerolog.TimeFieldFormat = time.RFC3339Nano
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// Setup configures a stderr logger, falling back to info-level console output
// when the settings are invalid.
func Setup(level, format string) zerolog.Logger {
	logger, err := New(os.Stderr, level, format)
	if err != nil {
		logger, _ = New(os.Stderr, "info", "console")
		logger.Warn().Err(err).Msg("Falling back to default logging")
	}
	return logger
}
