package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog.
// Debug logging is enabled via SSO_LOG_DEBUG=true.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("SSO_LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
