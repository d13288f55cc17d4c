// SPDX-License-Identifier: MPL-2.0

//go:build unix

package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"

	"github.com/creack/pty"
)

func spawnLauncher() *Launcher { return New(ModeSpawn) }

func TestLaunch_SpawnExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		args    []string
		want    ExitCode
	}{
		{name: "true", command: "true", want: 0},
		{name: "false", command: "false", want: 1},
		{name: "explicit code", command: "sh", args: []string{"-c", "exit 7"}, want: 7},
		{name: "max code", command: "sh", args: []string{"-c", "exit 255"}, want: 255},
		{name: "killed by signal", command: "sh", args: []string{"-c", "kill -9 $$"}, want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, err := spawnLauncher().Launch(context.Background(), Request{Command: tt.command, Args: tt.args})
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			if code != tt.want {
				t.Errorf("Launch() = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestLaunch_SpawnPassesEnvAndArgs(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	code, err := spawnLauncher().Launch(context.Background(), Request{
		Command: "sh",
		Args:    []string{"-c", `printf '%s|%s|%s' "$0" "$FOO" "$1"`, "arg0", "first arg"},
		Env:     []string{"FOO=from env", "PATH=/usr/bin:/bin"},
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("Launch() = %d, want 0", code)
	}
	if got := stdout.String(); got != "arg0|from env|first arg" {
		t.Errorf("child output = %q", got)
	}
}

func TestLaunch_SpawnEnvIsExclusive(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	_, err := spawnLauncher().Launch(context.Background(), Request{
		Command: "sh",
		Args:    []string{"-c", `printf '%s' "${ONLY_IN_PARENT-unset}"`},
		Env:     []string{"PATH=/usr/bin:/bin"},
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if stdout.String() != "unset" {
		t.Errorf("child saw %q, want only the given environment", stdout.String())
	}
}

func TestLaunch_SpawnKeepsTerminalStdin(t *testing.T) {
	t.Parallel()

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	code, err := spawnLauncher().Launch(context.Background(), Request{
		Command: "sh",
		Args:    []string{"-c", "test -t 0"},
		Env:     []string{"PATH=/usr/bin:/bin"},
		Stdin:   tty,
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if code != 0 {
		t.Errorf("child stdin is not a terminal (exit %d)", code)
	}
}

func TestLaunch_CommandNotFound(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeSpawn, ModeExec, ModeAuto} {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()

			l := New(mode)
			l.execImage = func(string, []string, []string) error {
				t.Error("execImage called for a missing command")
				return nil
			}

			code, err := l.Launch(context.Background(), Request{Command: "snapenv-definitely-not-a-command"})
			if !errors.Is(err, ErrSpawn) {
				t.Fatalf("Launch() error = %v, want ErrSpawn", err)
			}
			if !errors.Is(err, exec.ErrNotFound) {
				t.Errorf("Launch() error = %v, want it to wrap exec.ErrNotFound", err)
			}
			if code != ExitFailure {
				t.Errorf("Launch() = %d, want %d", code, ExitFailure)
			}
		})
	}
}

func TestLaunch_NotExecutable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "script")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	_, err := spawnLauncher().Launch(context.Background(), Request{Command: path})
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("Launch() error = %v, want ErrSpawn", err)
	}
}

func TestLaunch_EmptyCommand(t *testing.T) {
	t.Parallel()

	_, err := spawnLauncher().Launch(context.Background(), Request{})
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("Launch() error = %v, want ErrSpawn", err)
	}
}

func TestLaunch_ExecMode(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotArgv []string
		gotEnv  []string
	)
	execErr := errors.New("exec format error")

	l := New(ModeExec)
	l.lookPath = func(file string) (string, error) { return "/resolved/" + file, nil }
	l.execImage = func(path string, argv, env []string) error {
		gotPath, gotArgv, gotEnv = path, argv, env
		return execErr
	}

	code, err := l.Launch(context.Background(), Request{
		Command: "app",
		Args:    []string{"--flag", "value"},
		Env:     []string{"A=1"},
	})

	if gotPath != "/resolved/app" {
		t.Errorf("exec path = %q, want /resolved/app", gotPath)
	}
	if !slices.Equal(gotArgv, []string{"app", "--flag", "value"}) {
		t.Errorf("exec argv = %v", gotArgv)
	}
	if !slices.Equal(gotEnv, []string{"A=1"}) {
		t.Errorf("exec env = %v", gotEnv)
	}
	if !errors.Is(err, ErrSpawn) || !errors.Is(err, execErr) {
		t.Errorf("Launch() error = %v, want ErrSpawn wrapping the exec failure", err)
	}
	if code != ExitFailure {
		t.Errorf("Launch() = %d, want %d", code, ExitFailure)
	}
}

func TestEffectiveMode(t *testing.T) {
	t.Parallel()

	if got := New(ModeAuto).EffectiveMode(); got != ModeExec {
		t.Errorf("auto on unix = %s, want exec", got)
	}
	if got := New(ModeSpawn).EffectiveMode(); got != ModeSpawn {
		t.Errorf("spawn = %s", got)
	}
	if got := New(ModeExec).EffectiveMode(); got != ModeExec {
		t.Errorf("exec = %s", got)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "exec", want: ModeExec},
		{in: "spawn", want: ModeSpawn},
		{in: "fork", wantErr: true},
		{in: "EXEC", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	if !ExitCode(0).IsSuccess() || ExitCode(3).IsSuccess() {
		t.Error("IsSuccess() mismatch")
	}
	if ExitCode(42).String() != "42" {
		t.Errorf("String() = %q", ExitCode(42).String())
	}
	if code, ok := exitCodeFromWait(errors.New("wait: no child")); ok || code != ExitFailure {
		t.Errorf("exitCodeFromWait(non-exit error) = %d, %v", code, ok)
	}
}
