// Package logging builds the slog handlers used by the vcore binary.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Options selects the handler.
type Options struct {
	// Level is the minimum level logged. It may be changed after New.
	Level *slog.LevelVar

	// JSON selects slog's JSON handler instead of tint.
	JSON bool

	// NoColor forces plain text even on a terminal.
	NoColor bool
}

// New returns a logger writing to stderr. Text output is colored when
// stderr is a terminal.
func New(opts Options) *slog.Logger {
	if opts.JSON {
		return NewWriter(os.Stderr, opts)
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		opts.NoColor = true
	}
	return NewWriter(colorable.NewColorable(os.Stderr), opts)
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = &slog.LevelVar{}
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    opts.NoColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}
