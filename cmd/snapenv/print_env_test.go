// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const printEnvPayload = `{"env":{"greeting":"hello world","port":8080,"quote":"it's"},"apps":{"app1":{"env":{"debug":true}}}}`

var printEnvWant = map[string]string{
	"GREETING": "hello world",
	"PORT":     "8080",
	"QUOTE":    "it's",
	"DEBUG":    "true",
}

func TestPrintEnv_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		flag   string
		decode func([]byte, any) error
	}{
		{name: "json", flag: "--print-env=json", decode: json.Unmarshal},
		{name: "yaml", flag: "--print-env=yaml", decode: yaml.Unmarshal},
		{name: "toml", flag: "--print-env=toml", decode: toml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, printEnvPayload)
			if code := h.run(tt.flag); code != 0 {
				t.Fatalf("run() = %d\nstderr: %s", code, h.stderr)
			}
			if h.launcher.calls != 0 {
				t.Error("--print-env must not launch")
			}

			var got map[string]string
			if err := tt.decode(h.stdout.Bytes(), &got); err != nil {
				t.Fatalf("output does not decode as %s: %v\n%s", tt.name, err, h.stdout)
			}
			if !maps.Equal(got, printEnvWant) {
				t.Errorf("decoded = %v, want %v", got, printEnvWant)
			}
		})
	}
}

func TestPrintEnv_ShellFormat(t *testing.T) {
	t.Parallel()

	h := newHarness(t, printEnvPayload)
	// A command after --print-env is accepted and ignored.
	if code := h.run("--print-env", "ignored"); code != 0 {
		t.Fatalf("run() = %d\nstderr: %s", code, h.stderr)
	}
	if h.launcher.calls != 0 {
		t.Error("--print-env must not launch")
	}

	lines := strings.Split(strings.TrimSuffix(h.stdout.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), h.stdout)
	}
	wantPrefixes := []string{"export DEBUG=true", "export GREETING='hello world'", "export PORT=8080", "export QUOTE="}
	for i, want := range wantPrefixes {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
}

func TestPrintEnv_Empty(t *testing.T) {
	t.Parallel()

	for flag, want := range map[string]string{
		"--print-env":      "",
		"--print-env=json": "{}\n",
		"--print-env=yaml": "{}\n",
	} {
		h := newHarness(t, `{}`)
		if code := h.run(flag); code != 0 {
			t.Fatalf("%s: run() = %d\nstderr: %s", flag, code, h.stderr)
		}
		if h.stdout.String() != want {
			t.Errorf("%s: output = %q, want %q", flag, h.stdout, want)
		}
	}
}

func TestPrintEnv_InvalidFormat(t *testing.T) {
	t.Parallel()

	h := newHarness(t, `{}`)
	if code := h.run("--print-env=xml"); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "invalid output format") {
		t.Errorf("stderr = %q", h.stderr)
	}
	if h.fetcher.calls != 0 {
		t.Error("an invalid format should fail before querying snapd")
	}

	if _, err := parseOutputFormat("xml"); !errors.Is(err, ErrInvalidOutputFormat) {
		t.Errorf("parseOutputFormat() error = %v, want ErrInvalidOutputFormat", err)
	}
}
