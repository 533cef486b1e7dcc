package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output keeps log
// aggregation simple; the level is bumped to debug via RENTLY_LOG_DEBUG.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("RENTLY_LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
