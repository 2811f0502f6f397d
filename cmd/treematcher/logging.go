package main

import (
	"io"
	"log/slog"

	"github.com/dPliakos/treematcher/internal/config"
)

// newLogger builds the handler named by cfg. Verbose forces debug level.
func newLogger(w io.Writer, cfg config.Log, verbose bool) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
