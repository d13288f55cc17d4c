// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
)

const (
	// ModeAuto replaces the process image where the platform supports it and
	// falls back to spawn-and-wait elsewhere.
	ModeAuto Mode = "auto"
	// ModeExec always replaces the process image.
	ModeExec Mode = "exec"
	// ModeSpawn starts the command as a child and propagates its exit code.
	ModeSpawn Mode = "spawn"
)

type (
	// Mode selects how the target command is started.
	Mode string

	// Request describes the command to launch.
	Request struct {
		Command string
		Args    []string
		// Env is the complete child environment as "KEY=VALUE" entries.
		// When nil, the current process environment is used.
		Env []string

		// Stdin, Stdout and Stderr are used in spawn mode. Nil values
		// inherit the launcher's own streams. Exec mode always inherits.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Launcher starts the target command once the environment is resolved.
	Launcher struct {
		mode      Mode
		lookPath  func(file string) (string, error)
		execImage func(path string, argv, env []string) error
	}
)

// ParseMode validates a mode name. The empty string selects ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeExec, ModeSpawn:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected auto, exec or spawn)", ErrInvalidMode, s)
	}
}

// New creates a Launcher for mode.
func New(mode Mode) *Launcher {
	return &Launcher{
		mode:      mode,
		lookPath:  exec.LookPath,
		execImage: execImage,
	}
}

// EffectiveMode resolves ModeAuto for the current platform.
func (l *Launcher) EffectiveMode() Mode {
	if l.mode == ModeExec || l.mode == ModeSpawn {
		return l.mode
	}
	if execSupported {
		return ModeExec
	}
	return ModeSpawn
}

// Launch starts req.Command with req.Args and req.Env.
//
// In exec mode a successful call never returns: the current process becomes
// the command. In spawn mode Launch waits for the child and returns its exit
// code, or ExitFailure if it was killed by a signal. A command that cannot be
// found or started yields a SpawnError.
func (l *Launcher) Launch(ctx context.Context, req Request) (ExitCode, error) {
	if req.Command == "" {
		return ExitFailure, &SpawnError{Command: req.Command, Err: errors.New("no command given")}
	}

	path, err := l.lookPath(req.Command)
	if err != nil {
		return ExitFailure, &SpawnError{Command: req.Command, Err: err}
	}

	env := req.Env
	if env == nil {
		env = os.Environ()
	}

	if l.EffectiveMode() == ModeExec {
		argv := append([]string{req.Command}, req.Args...)
		err := l.execImage(path, argv, env)
		return ExitFailure, &SpawnError{Command: req.Command, Err: err}
	}

	return l.spawn(ctx, path, env, req)
}

func (l *Launcher) spawn(ctx context.Context, path string, env []string, req Request) (ExitCode, error) {
	cmd := exec.CommandContext(ctx, path, req.Args...)
	cmd.Args[0] = req.Command
	cmd.Env = env
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if req.Stdin != nil {
		cmd.Stdin = req.Stdin
	}
	if req.Stdout != nil {
		cmd.Stdout = req.Stdout
	}
	if req.Stderr != nil {
		cmd.Stderr = req.Stderr
	}

	if err := cmd.Start(); err != nil {
		return ExitFailure, &SpawnError{Command: req.Command, Err: err}
	}

	stop := forwardSignals(cmd.Process)
	defer stop()

	err := cmd.Wait()
	code, ok := exitCodeFromWait(err)
	if !ok {
		return ExitFailure, fmt.Errorf("wait for %q: %w", req.Command, err)
	}
	return code, nil
}

// forwardSignals relays termination signals to the child while it runs.
// Terminal-generated signals already reach the whole foreground process
// group, so those are only held off from the launcher itself.
func forwardSignals(p *os.Process) (stop func()) {
	forward := make(chan os.Signal, 4)
	hold := make(chan os.Signal, 4)
	// Notify with an empty list would subscribe to every signal.
	if len(forwardedSignals) > 0 {
		signal.Notify(forward, forwardedSignals...)
	}
	if len(heldSignals) > 0 {
		signal.Notify(hold, heldSignals...)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-forward:
				_ = p.Signal(sig)
			case <-hold:
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(forward)
		signal.Stop(hold)
		close(done)
	}
}
