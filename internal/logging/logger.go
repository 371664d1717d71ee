// Package logging provides a configured slog logger for sqlsig, plus the
// run_id attribute convention every compiler.Compile invocation stamps its
// log lines with.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the default slog logger used across the CLI and
// compiler pipeline.
type Options struct {
	// Verbose toggles debug level logging when true.
	Verbose bool
	// Writer directs log output; defaults to os.Stderr when nil.
	Writer io.Writer
}

// New constructs a slog.Logger with sqlsig's defaults: a text handler, info
// level unless Verbose requests debug. Verbose also turns on AddSource, so
// a debug line points back at the exact call site that emitted it.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level, AddSource: opts.Verbose})
	return slog.New(handler)
}

// WithRunID returns logger with a run_id attribute bound to every line it
// emits afterward, keyed by a compiler.Result.RunID so every diagnostic and
// debug line from one Compile call can be grepped out of a shared log
// stream as a single unit.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String("run_id", runID))
}
