package main

import (
	"io"
	"log/slog"

	"github.com/pevans/boardblog/config"
)

// newLogger creates the text logger progress lines are written to. Unknown
// levels fall back to info.
func newLogger(level string, w io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	if l, err := config.ParseLevel(level); err == nil {
		lvl.Set(l)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
