// Package logging configures the zerolog logger shared by commands and
// the scan engine. Logs go to stderr so stdout only carries reports.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"agentload/internal/config"
)

// Setup builds a logger from the logging config and installs it as the
// global zerolog logger. A nil w writes to stderr.
func Setup(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(w)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)})
	}
	logger = logger.Level(level).With().Timestamp().Logger()

	log.Logger = logger
	return logger
}

// isTerminal reports whether w is a TTY, so console output may use color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
