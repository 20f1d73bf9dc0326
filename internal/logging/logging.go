// Package logging configures the process-wide slog logger.
//
// Output is human-readable text on a terminal and JSON otherwise. LOG_FORMAT
// (text/json) overrides the detection and LOG_LEVEL selects the level.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// New creates a logger writing to stdout.
func New() *slog.Logger {
	useText := useTextFormat(os.Getenv("LOG_FORMAT"), isatty.IsTerminal(os.Stdout.Fd()))
	return NewWithWriter(os.Stdout, useText, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, text bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if text {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetDefault creates a new logger and installs it as the slog default.
func SetDefault() *slog.Logger {
	logger := New()
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a LOG_LEVEL value to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func useTextFormat(format string, tty bool) bool {
	switch strings.ToLower(format) {
	case "text":
		return true
	case "json":
		return false
	default:
		return tty
	}
}
