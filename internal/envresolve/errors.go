// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"errors"
	"fmt"
)

var (
	// ErrPayload is returned when result.stdout is missing, is not a string,
	// or does not parse as JSON.
	ErrPayload = errors.New("invalid configuration payload")
	// ErrNotFound is returned when a referenced environment file does not exist.
	ErrNotFound = errors.New("environment file not found")
	// ErrNotReadable is returned when a referenced environment file exists but
	// is not a readable regular file.
	ErrNotReadable = errors.New("environment file not readable")
	// ErrFileFormat is returned when an environment file cannot be parsed.
	ErrFileFormat = errors.New("invalid environment file format")
)

type (
	// PayloadError describes why the inner configuration document could not be
	// extracted. It wraps ErrPayload for errors.Is() compatibility.
	PayloadError struct {
		Reason string
		// ServerMessage is result.message from an error envelope, if any.
		ServerMessage string
		Err           error
	}

	// EnvFileError is returned by SourceEnvFile. Kind is one of ErrNotFound,
	// ErrNotReadable or ErrFileFormat; both Kind and Err are reachable through
	// errors.Is/As.
	EnvFileError struct {
		Path string
		Kind error
		Err  error
	}

	// SyntaxError locates a parse failure inside an environment file.
	SyntaxError struct {
		File string
		Line int
		Msg  string
	}
)

// Error implements the error interface.
func (e *PayloadError) Error() string {
	msg := "invalid configuration payload: " + e.Reason
	if e.ServerMessage != "" {
		msg += " (control plane said: " + e.ServerMessage + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrPayload and the underlying cause, if any.
func (e *PayloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPayload}
	}
	return []error{ErrPayload, e.Err}
}

// Error implements the error interface.
func (e *EnvFileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the error kind and the underlying cause, if any.
func (e *EnvFileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}
