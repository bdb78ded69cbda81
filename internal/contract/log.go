package contract

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a console logger on stderr. Verbose enables debug level.
func NewLogger(verbose bool) zerolog.Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo builds a console logger writing to w.
func NewLoggerTo(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
