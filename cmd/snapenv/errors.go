// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/snapenv/snapenv/internal/config"
	"github.com/snapenv/snapenv/internal/envresolve"
	"github.com/snapenv/snapenv/internal/issue"
	"github.com/snapenv/snapenv/internal/launcher"
	"github.com/snapenv/snapenv/internal/snapctl"

	"golang.org/x/term"
)

// guidanceWidth is the wrap width of rendered issue guidance.
const guidanceWidth = 80

// classify attaches user-facing context to pipeline errors. Errors that are
// already actionable pass through unchanged.
func classify(err error) error {
	var ae *issue.ActionableError
	if err == nil || errors.As(err, &ae) {
		return err
	}

	ctx := issue.NewErrorContext().Wrap(err)

	var (
		transportErr *snapctl.TransportError
		envFileErr   *envresolve.EnvFileError
		spawnErr     *launcher.SpawnError
	)
	switch {
	case errors.Is(err, config.ErrSession):
		ctx.WithOperation("read snap session").
			WithSuggestion("Run the app through its snap command so snapd sets env_alias and SNAP_CONTEXT").
			WithIssue(issue.SessionIncompleteId)

	case errors.As(err, &transportErr):
		ctx.WithOperation("query snapd").
			WithResource(transportErr.SocketPath).
			WithIssue(issue.ControlPlaneUnreachableId)
		if transportErr.Op == "authorize" {
			ctx.WithSuggestion("SNAP_CONTEXT is not set; run the app through its snap command")
		} else {
			ctx.WithSuggestion("Check that snapd is running and the socket is reachable").
				WithSuggestion("Use --socket to point at another socket")
		}

	case errors.Is(err, snapctl.ErrProtocol):
		ctx.WithOperation("query snapd").
			WithSuggestion("Check the endpoint setting").
			WithIssue(issue.ControlPlaneProtocolId)

	case errors.Is(err, envresolve.ErrPayload):
		ctx.WithOperation("read snap configuration").
			WithSuggestion("Inspect the settings with 'snapctl get -d env envfile apps'").
			WithIssue(issue.PayloadInvalidId)

	case errors.As(err, &envFileErr):
		ctx.WithOperation("source environment file").WithResource(envFileErr.Path)
		switch {
		case errors.Is(err, envresolve.ErrNotFound):
			ctx.WithSuggestion("Create the file or unset the envfile setting").
				WithIssue(issue.EnvFileNotFoundId)
		case errors.Is(err, envresolve.ErrNotReadable):
			ctx.WithSuggestion("Make sure the path names a regular file the snap may read").
				WithIssue(issue.EnvFileNotReadableId)
		default:
			ctx.WithSuggestion("Fix the line named above; each line must be KEY=VALUE").
				WithIssue(issue.EnvFileFormatId)
		}

	case errors.As(err, &spawnErr):
		ctx.WithOperation("launch command").
			WithResource(spawnErr.Command).
			WithSuggestion("Check the command name and that it is executable").
			WithSuggestion("Use an absolute path such as $SNAP/bin/<app>").
			WithIssue(issue.CommandNotFoundId)

	default:
		return err
	}

	return ctx.BuildError()
}

// renderError prints err to w. Verbose mode adds the error chain and, when w
// is a terminal, the rendered guidance of the linked issue.
func (inv *invocation) renderError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		err = exitErr.Err
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, inv.opts.verbose))

	var ae *issue.ActionableError
	if !inv.opts.verbose || !errors.As(err, &ae) || ae.Issue == 0 || !isTerminal(w) {
		return
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return
	}
	if guidance, renderErr := entry.Render(guidanceWidth); renderErr == nil {
		fmt.Fprint(w, guidance)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
