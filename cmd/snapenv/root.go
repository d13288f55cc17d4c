// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/snapenv/snapenv/internal/config"
	"github.com/snapenv/snapenv/internal/launcher"
	"github.com/snapenv/snapenv/internal/snapctl"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// commandLauncher starts the target command once the environment is known.
	commandLauncher interface {
		Launch(ctx context.Context, req launcher.Request) (launcher.ExitCode, error)
	}

	// dependencies are the collaborators of one invocation. Tests replace them.
	dependencies struct {
		config      config.Provider
		newFetcher  func(socketPath, endpoint string) snapctl.Fetcher
		newLauncher func(mode launcher.Mode) commandLauncher
		environ     func() []string
		stdout      io.Writer
		stderr      io.Writer
	}

	// rootOptions holds the parsed flags.
	rootOptions struct {
		verbose  bool
		cfgFile  string
		socket   string
		endpoint string
		spawn    bool
		printEnv string
	}
)

func defaultDependencies() *dependencies {
	return &dependencies{
		config: config.NewProvider(),
		newFetcher: func(socketPath, endpoint string) snapctl.Fetcher {
			return snapctl.NewClient(socketPath, endpoint)
		},
		newLauncher: func(mode launcher.Mode) commandLauncher { return launcher.New(mode) },
		environ:     os.Environ,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
}

func newRootCommand(inv *invocation) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snapenv [flags] <command> [args...]",
		Short: "Run a snap app with its configured environment",
		Long: TitleStyle.Render("snapenv") + SubtitleStyle.Render(" - run a snap app with its configured environment") + `

snapenv asks snapd for the snap's ` + CmdStyle.Render("env") + `, ` + CmdStyle.Render("envfile") + ` and ` + CmdStyle.Render("apps") + ` settings,
merges them into the environment and then runs the command.

Later sources win:
  1. envfile               global environment file
  2. apps.<app>.envfile    app environment file
  3. env                   global settings
  4. apps.<app>.env        app settings

Setting keys are uppercased and '-' becomes '_'. The app is selected by
the ` + CmdStyle.Render("env_alias") + ` variable.

` + SubtitleStyle.Render("Examples:") + `
  snapenv $SNAP/bin/server --port 8080
  snapenv --print-env
  snapenv --print-env=json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && inv.opts.printEnv == "" {
				return &ExitError{
					Code: launcher.ExitFailure,
					Err:  fmt.Errorf("missing command\n\nUsage:\n  %s", cmd.UseLine()),
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return inv.prepare(cmd.Context(), args)
		},
	}

	// Everything after the command belongs to the command.
	rootCmd.Flags().SetInterspersed(false)

	flags := rootCmd.Flags()
	flags.BoolVarP(&inv.opts.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	flags.StringVar(&inv.opts.cfgFile, "config", "", "config file (default is $SNAP_USER_DATA/snapenv.cue or $XDG_CONFIG_HOME/snapenv/config.cue)")
	flags.StringVar(&inv.opts.socket, "socket", "", "snapd socket path (overrides socket_path)")
	flags.StringVar(&inv.opts.endpoint, "endpoint", "", "snapctl endpoint path (overrides endpoint)")
	flags.BoolVar(&inv.opts.spawn, "spawn", false, "run the command as a child and propagate its exit code")
	flags.StringVar(&inv.opts.printEnv, "print-env", "", "print the resolved environment instead of running a command (env, json, yaml, toml)")
	flags.Lookup("print-env").NoOptDefVal = string(formatEnv)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs snapenv with the process arguments and exits with the
// resulting code. This is called by main.main().
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], defaultDependencies()))
}

// run resolves the environment inside the cobra command and launches the
// target afterwards, so the child's exit status never passes through fang's
// error reporting.
func run(ctx context.Context, args []string, deps *dependencies) int {
	inv := &invocation{deps: deps}
	rootCmd := newRootCommand(inv)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(deps.stdout)
	rootCmd.SetErr(deps.stderr)

	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			inv.renderError(w, err)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return int(exitErr.Code)
		}
		return int(launcher.ExitFailure)
	}

	if inv.plan == nil {
		return int(launcher.ExitSuccess)
	}

	code, err := inv.launch(ctx)
	if err != nil {
		inv.renderError(deps.stderr, err)
	}
	return int(code)
}
