// SPDX-License-Identifier: MPL-2.0

// Package launcher starts the target command with the resolved environment.
//
// On unix the launcher replaces its own process image (execve), so the
// command inherits the pid, stdio and exit status directly. Where that is
// unavailable, or when spawn mode is requested, the command runs as a child
// and its exit code is propagated; a child killed by a signal maps to
// ExitFailure.
package launcher
