// Package logging builds the slog.Logger used by the extractor: a tint console
// handler on stderr plus an optional plain-text log file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/assetextract/internal/utils"
)

const timeFormat = "15:04:05.000"

type Options struct {
	// Verbosity is the number of -v flags.
	Verbosity int
	// Quiet restricts output to errors.
	Quiet bool
	// Console receives colourised output. Defaults to os.Stderr.
	Console io.Writer
	// FilePath, when set, also writes every record at the same level to this file.
	FilePath string
}

// Level maps the CLI verbosity flags onto slog levels: quiet is ERROR,
// the default is WARN, -v is INFO and -vv or more is DEBUG.
func Level(verbosity int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New returns the logger and a close func that must be called once logging is done.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := Level(opts.Verbosity, opts.Quiet)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    !isTerminal(console),
	})

	if opts.FilePath == "" {
		return slog.New(consoleHandler), func() error { return nil }, nil
	}

	if err := utils.EnsureParent(opts.FilePath); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(NewFanout(consoleHandler, fileHandler)), file.Close, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
