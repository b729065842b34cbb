package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the application logger writing human-readable output
// to w at the given level. Unknown level names fall back to info.
// Loggers are injected, never global, so tests and parallel runs stay
// isolated.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(console).Level(lvl).With().Timestamp().Logger()
}
