// Package logging configures the process logger. Logs always go to stderr:
// stdout is reserved for the emitted record stream.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text slog.Logger writing to w. verbose lowers the level to
// Debug.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
