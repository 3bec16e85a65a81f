package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger defines the minimal logging interface for varmesh. Arguments follow
// slog's alternating key/value convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoOpLogger discards all log output. It is the default logger so library
// consumers opt in to diagnostics explicitly.
type NoOpLogger struct{}

// Debug implements Logger.
func (NoOpLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NoOpLogger) Info(string, ...any) {}

// Warn implements Logger.
func (NoOpLogger) Warn(string, ...any) {}

// Error implements Logger.
func (NoOpLogger) Error(string, ...any) {}

// SlogLogger adapts *slog.Logger to the Logger interface.
type SlogLogger struct {
	*slog.Logger
}

// Options configures a SlogLogger.
type Options struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// Writer receives the output. Defaults to os.Stderr.
	Writer io.Writer
	// JSON selects JSON output instead of the text handler.
	JSON bool
}

// NewSlogLogger builds a SlogLogger with optional overrides.
func NewSlogLogger(optFns ...func(o *Options)) *SlogLogger {
	opts := Options{
		Level:  slog.LevelInfo,
		Writer: os.Stderr,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(opts.Writer, hopts)
	} else {
		h = slog.NewTextHandler(opts.Writer, hopts)
	}
	return &SlogLogger{Logger: slog.New(h)}
}
