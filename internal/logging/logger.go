package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/smukkama/weather-summary/pkg/config"
)

func New(cfg config.LogConfig, appName string) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, appName)
}

func NewWithWriter(w io.Writer, cfg config.LogConfig, appName string) *slog.Logger {
	level := ParseLevel(cfg.Level)

	if cfg.Env == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", appName,
		"env", cfg.Env,
	)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
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
