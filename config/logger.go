package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger from GO_ENV and LOG_LEVEL: JSON output
// in production, text elsewhere. Every record carries the service name so the
// registration engine's retry warnings are attributable in aggregated logs.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", "confcentral")
}
