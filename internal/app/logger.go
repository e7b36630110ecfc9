package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/logx"
)

// NewLogger builds the JSON logger used by both binaries.
func NewLogger(cfg *config.Config) logx.Logger {
	return newLoggerTo(os.Stdout, cfg.LogLevel)
}

func newLoggerTo(w io.Writer, level string) logx.Logger {
	base := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	return logx.NewSlogAdapter(base)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
