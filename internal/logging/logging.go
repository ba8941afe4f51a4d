// Package logging configures the global zerolog logger for triagedesk.
//
// The terminal belongs to the UI, so log lines go to a file as JSON. The
// ctrl+l overlay reads them back through package logtail.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options control logger initialization.
type Options struct {
	Path    string // empty discards all output
	Level   string
	Service string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init replaces the global logger and returns a closer for the log file.
// An unknown level falls back to info and is reported in the first line.
func Init(opts Options) (io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, levelErr := parseLevel(opts.Level)

	var out io.Writer = io.Discard
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(opts.Path); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = file, file
	}

	service := strings.TrimSpace(opts.Service)
	if service == "" {
		service = "triagedesk"
	}

	log.Logger = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	if levelErr != nil {
		log.Warn().Err(levelErr).Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return closer, nil
}

func parseLevel(raw string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(trimmed)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("parse level %q", raw)
	}
	return level, nil
}
