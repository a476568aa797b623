// Package util carries small shared helpers for the runtime and the CLI.
package util

import (
	"log/slog"
	"os"
	"strings"

	"github.com/hvml/purc"
)

// InitSlog configures slog based on the PURC_LOG_LEVEL environment
// variable (debug, info, warn, error). PURC_EJSON_LOG_ENABLE forces
// debug so the tokenizer trace is visible without extra flags.
func InitSlog() {
	level := slog.LevelInfo
	configured := false

	if logLevel, ok := os.LookupEnv("PURC_LOG_LEVEL"); ok {
		configured = true
		switch strings.ToLower(logLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}

	if purc.EJSONLogEnabled() {
		configured = true
		level = slog.LevelDebug
	}

	if !configured {
		return
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))
}
