package gridsearch

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a structured logger for SearchConfig.Logger.
//
// Level is one of debug, info, warn or error; anything else means info.
// Format is json or text; anything else means text.
func NewLogger(level, format string, output io.Writer) *slog.Logger {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(output, opts))
	}

	return slog.New(slog.NewTextHandler(output, opts))
}
