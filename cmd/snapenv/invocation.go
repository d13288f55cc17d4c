// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/snapenv/snapenv/internal/config"
	"github.com/snapenv/snapenv/internal/envresolve"
	"github.com/snapenv/snapenv/internal/issue"
	"github.com/snapenv/snapenv/internal/launcher"

	"github.com/charmbracelet/log"
)

type (
	// invocation carries the state of one snapenv run from flag parsing to
	// launch.
	invocation struct {
		deps   *dependencies
		opts   rootOptions
		logger *log.Logger
		// plan is set once the environment is resolved and a command is due.
		plan *launchPlan
	}

	launchPlan struct {
		mode launcher.Mode
		req  launcher.Request
	}
)

// prepare runs the resolution pipeline. On success it either prints the
// environment or records the launch plan.
func (inv *invocation) prepare(ctx context.Context, args []string) error {
	cfg, err := inv.loadConfig(ctx)
	if err != nil {
		return fail(err)
	}
	inv.logger = newLogger(inv.deps.stderr, cfg.LogLevel)
	if cfg.Path != "" {
		inv.logger.Debug("loaded config", "path", cfg.Path)
	}

	mode, err := launcher.ParseMode(string(cfg.LaunchMode))
	if err != nil {
		return fail(err)
	}

	var format outputFormat
	if inv.opts.printEnv != "" {
		if format, err = parseOutputFormat(inv.opts.printEnv); err != nil {
			return fail(err)
		}
	}

	environ := inv.deps.environ()
	session, err := config.LoadSession(environ)
	if err != nil {
		return fail(classify(err))
	}

	fetcher := inv.deps.newFetcher(string(cfg.SocketPath), string(cfg.Endpoint))
	inv.logger.Debug("querying snapd", "socket", cfg.SocketPath, "endpoint", cfg.Endpoint, "app", session.App)
	doc, err := fetcher.Fetch(ctx, session.ContextID)
	if err != nil {
		return fail(classify(err))
	}

	res, err := envresolve.Resolve(session.App, doc, envresolve.Options{LookupEnv: lookupIn(environ)})
	if err != nil {
		return fail(classify(err))
	}

	for _, s := range res.Skipped {
		inv.logger.Warn("ignoring nested setting", "scope", s.Source.Scope(), "key", s.Key, "value", s.Raw)
	}
	for _, a := range res.Mutation.Assignments() {
		inv.logger.Debug("set", "key", a.Key, "source", a.Source)
	}
	inv.logger.Info("resolved environment", "app", session.App, "writes", res.Mutation.Len(), "skipped", len(res.Skipped))

	if inv.opts.printEnv != "" {
		if err := printEnv(inv.deps.stdout, format, &res.Mutation); err != nil {
			return fail(err)
		}
		return nil
	}

	inv.plan = &launchPlan{
		mode: mode,
		req: launcher.Request{
			Command: args[0],
			Args:    args[1:],
			Env:     res.Mutation.Apply(environ),
		},
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides.
func (inv *invocation) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := inv.deps.config.Load(ctx, config.LoadOptions{ConfigFilePath: inv.opts.cfgFile})
	if err != nil {
		return nil, err
	}
	if inv.opts.socket != "" {
		cfg.SocketPath = config.SocketPath(inv.opts.socket)
	}
	if inv.opts.endpoint != "" {
		cfg.Endpoint = config.EndpointPath(inv.opts.endpoint)
	}
	if inv.opts.spawn {
		cfg.LaunchMode = config.LaunchModeSpawn
	}
	if inv.opts.verbose {
		cfg.LogLevel = config.LogLevelDebug
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("apply command-line overrides").
			WithSuggestion("--socket must be an absolute path").
			WithSuggestion("--endpoint must start with '/'").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	return cfg, nil
}

// launch starts the planned command. In exec mode it only returns on failure.
func (inv *invocation) launch(ctx context.Context) (launcher.ExitCode, error) {
	l := inv.deps.newLauncher(inv.plan.mode)
	inv.logger.Debug("launching", "command", inv.plan.req.Command, "mode", inv.plan.mode)
	code, err := l.Launch(ctx, inv.plan.req)
	if err != nil {
		return launcher.ExitFailure, classify(err)
	}
	return code, nil
}

// lookupIn resolves names against a "KEY=VALUE" list. The last entry for a
// key wins, as with os.Getenv after duplicate assignments.
func lookupIn(environ []string) envresolve.LookupFunc {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = v
		}
	}
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// fail marks err as a launcher failure with exit code 1.
func fail(err error) error {
	return &ExitError{Code: launcher.ExitFailure, Err: err}
}
