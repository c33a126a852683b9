package cliconfig

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger writing to w.
// Verbose lowers the level to debug.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
