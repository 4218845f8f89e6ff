package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// newLogger builds the command's logger. Unknown levels fall back to info,
// unknown formats to JSON.
func newLogger(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(format) {
	case FormatConsole, FormatPretty:
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
		})
	default:
		zl = zerolog.New(w)
	}

	return zl.Level(lvl).With().Timestamp().Str("service", "filecrypt").Logger()
}
