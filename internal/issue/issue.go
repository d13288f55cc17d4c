// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	SessionIncompleteId Id = iota + 1
	ControlPlaneUnreachableId
	ControlPlaneProtocolId
	PayloadInvalidId
	EnvFileNotFoundId
	EnvFileNotReadableId
	EnvFileFormatId
	CommandNotFoundId
	ConfigLoadFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the guidance text of an Issue.
	MarkdownMsg string

	// HttpLink is a documentation URL attached to an Issue.
	HttpLink string

	// Issue is a catalog entry with longer remediation guidance than fits in
	// an ActionableError suggestion list.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guidance for a terminal, wrapping at width columns when
// width is positive.
func (i *Issue) Render(width int) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, width)
}

var render = func(md string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

var (
	sessionIncompleteIssue = &Issue{
		id: SessionIncompleteId,
		mdMsg: `
# The snap session is incomplete

snapenv reads two variables that snapd sets for every app it launches:

- ` + "`SNAP_CONTEXT`" + ` authorizes the configuration query.
- ` + "`env_alias`" + ` names the app whose ` + "`apps.<name>`" + ` settings apply.

## Things you can try
- Run the app through its snap command instead of calling snapenv directly.
- Check that the app's ` + "`environment:`" + ` stanza in snapcraft.yaml sets ` + "`env_alias`" + `:
~~~yaml
apps:
  web:
    command-chain: [bin/snapenv]
    environment:
      env_alias: web
~~~`,
		docLinks: []HttpLink{"https://snapcraft.io/docs/environment-variables"},
	}

	controlPlaneUnreachableIssue = &Issue{
		id: ControlPlaneUnreachableId,
		mdMsg: `
# snapd did not answer

The configuration is read from snapd over its snap socket. The socket could not
be reached or the connection broke before the answer was complete.

## Things you can try
- Check that snapd is running:
~~~
$ systemctl status snapd.socket
~~~
- Check that the snap has access to ` + "`/run/snapd-snap.socket`" + `.
- Point snapenv at another socket with ` + "`--socket`" + ` when testing outside a snap.`,
	}

	controlPlaneProtocolIssue = &Issue{
		id: ControlPlaneProtocolId,
		mdMsg: `
# snapd sent an unexpected answer

The response body was not a JSON document. This usually means something other
than snapd is listening on the socket, or the endpoint path is wrong.

## Things you can try
- Check the ` + "`endpoint`" + ` setting (default ` + "`/v2/snapctl`" + `).
- Run with ` + "`--verbose`" + ` to see the start of the response body.`,
	}

	payloadInvalidIssue = &Issue{
		id: PayloadInvalidId,
		mdMsg: `
# The snap configuration could not be read

snapd answered, but the value of ` + "`snapctl get env envfile apps`" + ` was missing
or was not valid JSON.

## Things you can try
- Inspect the configuration from inside the snap:
~~~
$ snapctl get -d env envfile apps
~~~
- Reset a broken value:
~~~
$ sudo snap set <snap> env='{}'
~~~`,
		docLinks: []HttpLink{"https://snapcraft.io/docs/configuration-in-snaps"},
	}

	envFileNotFoundIssue = &Issue{
		id: EnvFileNotFoundId,
		mdMsg: `
# Environment file not found

The ` + "`envfile`" + ` setting names a file that does not exist inside the snap's view of
the filesystem.

## Things you can try
- Use a path the snap can see, such as one under ` + "`$SNAP_COMMON`" + ` or ` + "`$SNAP_DATA`" + `.
- Unset the setting:
~~~
$ sudo snap unset <snap> envfile
~~~`,
	}

	envFileNotReadableIssue = &Issue{
		id: EnvFileNotReadableId,
		mdMsg: `
# Environment file not readable

The ` + "`envfile`" + ` path exists but is not a regular file, or the snap is not
allowed to open it.

## Things you can try
- Make sure the path names a file, not a directory or socket.
- Check the file mode and the snap's confinement interfaces.`,
	}

	envFileFormatIssue = &Issue{
		id: EnvFileFormatId,
		mdMsg: `
# Environment file has a syntax error

Environment files hold one ` + "`KEY=VALUE`" + ` assignment per line:

~~~sh
# comment
export GREETING="hello $USER"
LITERAL='no $expansion here'
PLAIN=value # trailing comment
~~~

The error message names the file and line that could not be parsed.`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command could not be started

The environment was resolved, but the target command was not found on ` + "`PATH`" + `
or could not be executed.

## Things you can try
- Use an absolute path such as ` + "`$SNAP/bin/app`" + `.
- Check that the file is executable.
- Print the environment the command would receive:
~~~
$ snapenv --print-env
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# snapenv configuration is invalid

The optional configuration file is CUE. Every field is optional:

~~~cue
socket_path: "/run/snapd-snap.socket"
endpoint:    "/v2/snapctl"
launch_mode: "auto" // or "exec", "spawn"
log_level:   "warn" // or "debug", "info", "error"
~~~

Settings can also be given as ` + "`SNAPENV_<KEY>`" + ` environment variables.`,
		docLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	issues = map[Id]*Issue{
		sessionIncompleteIssue.Id():       sessionIncompleteIssue,
		controlPlaneUnreachableIssue.Id(): controlPlaneUnreachableIssue,
		controlPlaneProtocolIssue.Id():    controlPlaneProtocolIssue,
		payloadInvalidIssue.Id():          payloadInvalidIssue,
		envFileNotFoundIssue.Id():         envFileNotFoundIssue,
		envFileNotReadableIssue.Id():      envFileNotReadableIssue,
		envFileFormatIssue.Id():           envFileFormatIssue,
		commandNotFoundIssue.Id():         commandNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
