// Package logging configures the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Pretty selects a human-readable
// console writer; otherwise lines are JSON, which journald stores as is.
func Setup(level string, pretty bool) (zerolog.Logger, error) {
	return SetupWithWriter(level, pretty, os.Stderr)
}

// SetupWithWriter is Setup with an explicit output.
func SetupWithWriter(level string, pretty bool, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	w := out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger, nil
}
