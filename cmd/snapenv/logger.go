// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/snapenv/snapenv/internal/config"

	"github.com/charmbracelet/log"
)

// newLogger returns the diagnostics logger. It writes to stderr so stdout
// stays clean for the launched command and for --print-env.
func newLogger(w io.Writer, level config.LogLevel) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "snapenv",
	})

	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}
