// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LaunchModeAuto replaces the process image where supported and spawns
	// elsewhere.
	LaunchModeAuto LaunchMode = "auto"
	// LaunchModeExec always replaces the process image.
	LaunchModeExec LaunchMode = "exec"
	// LaunchModeSpawn runs the command as a child and propagates its exit code.
	LaunchModeSpawn LaunchMode = "spawn"

	// LogLevelDebug logs the request, the sourced files and every assignment.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs a summary of the resolution.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs skipped settings only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs nothing but failures.
	LogLevelError LogLevel = "error"

	// DefaultSocketPath is snapd's socket for requests from inside a snap.
	DefaultSocketPath SocketPath = "/run/snapd-snap.socket"
	// DefaultEndpoint is the snapctl endpoint on that socket.
	DefaultEndpoint EndpointPath = "/v2/snapctl"
)

var (
	// ErrInvalidLaunchMode is returned when a LaunchMode value is not recognized.
	ErrInvalidLaunchMode = errors.New("invalid launch mode")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidSocketPath is returned when a SocketPath is not absolute.
	ErrInvalidSocketPath = errors.New("invalid socket path")
	// ErrInvalidEndpoint is returned when an EndpointPath does not start with "/".
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LaunchMode selects how the target command is started. It mirrors
	// launcher.Mode without importing the launcher.
	LaunchMode string

	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// SocketPath is the filesystem path of the snapd socket.
	SocketPath string

	// EndpointPath is the HTTP path queried on the socket.
	EndpointPath string

	// InvalidValueError is returned when a single field holds an unusable
	// value. It wraps the field's sentinel for errors.Is() compatibility.
	InvalidValueError struct {
		Field    string
		Value    string
		Expected string
		sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and collects the field-level errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the launcher configuration.
	Config struct {
		// SocketPath is the unix socket snapd listens on.
		SocketPath SocketPath `json:"socket_path" mapstructure:"socket_path"`
		// Endpoint is the path of the snapctl endpoint.
		Endpoint EndpointPath `json:"endpoint" mapstructure:"endpoint"`
		// LaunchMode selects exec, spawn, or platform auto-detection.
		LaunchMode LaunchMode `json:"launch_mode" mapstructure:"launch_mode"`
		// LogLevel is the CLI log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`

		// Path is the file the configuration was read from, empty when only
		// defaults and environment overrides apply.
		Path string `json:"-" mapstructure:"-"`
	}
)

// DefaultConfig returns the configuration used when no file or override is set.
func DefaultConfig() *Config {
	return &Config{
		SocketPath: DefaultSocketPath,
		Endpoint:   DefaultEndpoint,
		LaunchMode: LaunchModeAuto,
		LogLevel:   LogLevelWarn,
	}
}

// IsValid returns whether the LaunchMode is one of the known modes.
func (m LaunchMode) IsValid() (bool, []error) {
	switch m {
	case LaunchModeAuto, LaunchModeExec, LaunchModeSpawn:
		return true, nil
	default:
		return false, []error{&InvalidValueError{
			Field: "launch_mode", Value: string(m), Expected: "auto, exec or spawn", sentinel: ErrInvalidLaunchMode,
		}}
	}
}

// IsValid returns whether the LogLevel is one of the known levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{
			Field: "log_level", Value: string(l), Expected: "debug, info, warn or error", sentinel: ErrInvalidLogLevel,
		}}
	}
}

// IsValid returns whether the SocketPath is an absolute path.
func (p SocketPath) IsValid() (bool, []error) {
	if !strings.HasPrefix(string(p), "/") {
		return false, []error{&InvalidValueError{
			Field: "socket_path", Value: string(p), Expected: "an absolute path", sentinel: ErrInvalidSocketPath,
		}}
	}
	return true, nil
}

// IsValid returns whether the EndpointPath is an absolute URL path.
func (p EndpointPath) IsValid() (bool, []error) {
	if !strings.HasPrefix(string(p), "/") {
		return false, []error{&InvalidValueError{
			Field: "endpoint", Value: string(p), Expected: `a path starting with "/"`, sentinel: ErrInvalidEndpoint,
		}}
	}
	return true, nil
}

// IsValid returns whether every field of the Config is valid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, check := range []func() (bool, []error){
		c.SocketPath.IsValid,
		c.Endpoint.IsValid,
		c.LaunchMode.IsValid,
		c.LogLevel.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %q is not valid (expected %s)", e.Field, e.Value, e.Expected)
}

// Unwrap returns the field's sentinel error.
func (e *InvalidValueError) Unwrap() error { return e.sentinel }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
