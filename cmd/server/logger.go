package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/sakif/inventory-api/internal/config"
)

// newLogger builds the process logger from config and installs it as the
// slog default, so library code that logs through slog lands in the same
// stream.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	lvl := slog.LevelInfo

	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if cfg.Format == "json" {
		opts.AddSource = true
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}
