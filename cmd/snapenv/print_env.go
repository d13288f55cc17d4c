// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/snapenv/snapenv/internal/envresolve"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"
)

const (
	formatEnv  outputFormat = "env"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
	formatTOML outputFormat = "toml"
)

// ErrInvalidOutputFormat is returned for an unknown --print-env value.
var ErrInvalidOutputFormat = errors.New("invalid output format")

// outputFormat is a --print-env rendering.
type outputFormat string

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatEnv, formatJSON, formatYAML, formatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (expected env, json, yaml or toml)", ErrInvalidOutputFormat, s)
	}
}

// printEnv writes the resolved writes in the requested format. Only the keys
// snapenv sets are printed, not the inherited environment.
func printEnv(w io.Writer, format outputFormat, m *envresolve.Mutation) error {
	vars := m.Map()

	var (
		out []byte
		err error
	)
	switch format {
	case formatJSON:
		out, err = json.MarshalIndent(vars, "", "  ")
		out = append(out, '\n')
	case formatYAML:
		if len(vars) == 0 {
			out = []byte("{}\n")
			break
		}
		out, err = yaml.Marshal(vars)
	case formatTOML:
		out, err = toml.Marshal(vars)
	default:
		return printShell(w, m)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	_, err = w.Write(out)
	return err
}

// printShell writes one "export KEY=VALUE" line per key, sorted, with values
// quoted so the output can be sourced by a POSIX shell.
func printShell(w io.Writer, m *envresolve.Mutation) error {
	vars := m.Map()
	for _, key := range m.Keys() {
		quoted, err := syntax.Quote(vars[key], syntax.LangPOSIX)
		if err != nil {
			return fmt.Errorf("quote %s: %w", key, err)
		}
		if _, err := fmt.Fprintf(w, "export %s=%s\n", key, quoted); err != nil {
			return err
		}
	}
	return nil
}
