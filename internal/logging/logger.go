// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// VerboseEnv enables debug logging in every package when set to "1".
const VerboseEnv = "EDUAUTISMO_VERBOSE"

// Verbose reports whether verbose mode is enabled through the environment.
func Verbose() bool {
	return os.Getenv(VerboseEnv) == "1"
}

// New returns a structured logger rendered by pterm. level is one of
// debug, info, warn, error or off; verbose forces debug.
func New(w io.Writer, level string, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := ParseLevel(level)
	if verbose {
		lvl = pterm.LogLevelDebug
	}
	pl := pterm.DefaultLogger.WithWriter(w).WithLevel(lvl)
	return slog.New(pterm.NewSlogHandler(pl))
}

// ParseLevel maps a config level name to a pterm level. Unknown names mean warn.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return pterm.LogLevelDebug
	case "info":
		return pterm.LogLevelInfo
	case "error":
		return pterm.LogLevelError
	case "off", "none", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelWarn
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
