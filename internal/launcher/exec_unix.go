// SPDX-License-Identifier: MPL-2.0

//go:build unix

package launcher

import (
	"os"

	"golang.org/x/sys/unix"
)

const execSupported = true

var (
	forwardedSignals = []os.Signal{unix.SIGTERM, unix.SIGHUP}
	heldSignals      = []os.Signal{os.Interrupt, unix.SIGQUIT}
)

// execImage replaces the current process with path. It only returns on failure.
func execImage(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}
