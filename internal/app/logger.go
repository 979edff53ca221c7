package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fulfillment-platform/internal/config"
	"fulfillment-platform/internal/logx"
)

// NewLogger builds the process logger: slog JSON by default, zerolog console for LOG_FORMAT=console.
func NewLogger(cfg config.Log) logx.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg config.Log) logx.Logger {
	level := strings.ToLower(strings.TrimSpace(cfg.Level))
	if strings.EqualFold(cfg.Format, "console") {
		zl, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			zl = zerolog.InfoLevel
		}
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return logx.NewZerologAdapter(zerolog.New(out).Level(zl).With().Timestamp().Logger())
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(level)); err != nil {
		sl = slog.LevelInfo
	}
	base := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: sl}))
	return logx.NewSlogAdapter(base)
}
