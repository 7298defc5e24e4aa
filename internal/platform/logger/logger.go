package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured JSON logger tagged with the service environment.
// Local environments log at debug level.
func New(environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment)
}

func NewWithWriter(w io.Writer, environment string) *slog.Logger {
	level := slog.LevelInfo
	if environment == "local" || environment == "dev" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "credledger", "env", environment)
}

// Discard returns a logger that drops every record. Used by tests and as a nil default.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
