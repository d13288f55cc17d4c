// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"os/exec"
	"strconv"
)

const (
	// ExitSuccess is the exit code of a successful run.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for usage errors, launcher failures and children
	// that terminated without an exit status (killed by a signal).
	ExitFailure ExitCode = 1
)

// ExitCode represents a process exit status code.
// The zero value (0) means success.
type ExitCode int

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// exitCodeFromWait maps the error returned by (*exec.Cmd).Wait to the code
// this process should exit with. ok is false when err is not an exit status
// at all (the child could not be waited on).
func exitCodeFromWait(err error) (code ExitCode, ok bool) {
	if err == nil {
		return ExitSuccess, true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return ExitFailure, false
	}
	// ExitCode reports -1 when the child was terminated by a signal.
	if c := exitErr.ExitCode(); c >= 0 {
		return ExitCode(c), true
	}
	return ExitFailure, true
}
