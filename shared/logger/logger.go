package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

func init() {
	// Safe defaults for tests; main calls Initialize with the configured level.
	Initialize("info", false)
}

// Initialize sets up the global logger with the specified level and format.
func Initialize(level string, useJSON bool) {
	InitializeTo(os.Stdout, level, useJSON)
}

// InitializeTo is Initialize with an explicit destination.
func InitializeTo(w io.Writer, level string, useJSON bool) {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// Component returns a child logger tagged with the given component name.
func Component(name string) *slog.Logger {
	return Log.With("component", name)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
