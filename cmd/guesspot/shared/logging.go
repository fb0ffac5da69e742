// Package shared holds helpers common to the guesspot subcommands.
package shared

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// SetupLogger configures process-level logging for a guesspot binary. Console
// output is the default; jsonOutput switches to structured JSON for log
// collectors.
func SetupLogger(debug, jsonOutput bool) zerolog.Logger {
	return newLogger(os.Stderr, debug, jsonOutput)
}

func newLogger(w io.Writer, debug, jsonOutput bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if jsonOutput {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(w).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
