// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"fmt"
)

var (
	// ErrSpawn is the sentinel error wrapped by SpawnError.
	ErrSpawn = errors.New("cannot launch command")
	// ErrInvalidMode is returned for an unknown launch mode.
	ErrInvalidMode = errors.New("invalid launch mode")
)

// SpawnError is returned when the target executable cannot be found or
// started. It wraps ErrSpawn for errors.Is() compatibility.
type SpawnError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot launch %q: %v", e.Command, e.Err)
}

// Unwrap returns ErrSpawn and the underlying cause.
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawn, e.Err} }
