package cli

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

func newLogger(level string, color bool) *slog.Logger {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.DateTime,
		NoColor:    !color,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
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
