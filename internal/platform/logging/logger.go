// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// NewLogger returns a text slog.Logger writing to stdout at the given level.
func NewLogger(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
