// SPDX-License-Identifier: MPL-2.0

package snapctl

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is the sentinel error wrapped by TransportError.
	ErrTransport = errors.New("control-plane transport error")
	// ErrProtocol is the sentinel error wrapped by ProtocolError.
	ErrProtocol = errors.New("control-plane protocol error")
)

type (
	// TransportError is returned when the control-plane request cannot be
	// delivered or its response cannot be read in full.
	// It wraps ErrTransport for errors.Is() compatibility.
	TransportError struct {
		// Op is the step that failed ("dial", "request", "read body", ...).
		Op string
		// SocketPath is the control-plane socket that was addressed.
		SocketPath string
		Err        error
	}

	// ProtocolError is returned when the response body is not a well-formed
	// JSON document.
	ProtocolError struct {
		Reason string
		// Body is a bounded prefix of the offending response, for diagnostics.
		Body string
	}
)

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Op, e.SocketPath)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.SocketPath, e.Err)
}

// Unwrap returns both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Body == "" {
		return "malformed control-plane response: " + e.Reason
	}
	return fmt.Sprintf("malformed control-plane response: %s (body: %q)", e.Reason, e.Body)
}

// Unwrap returns ErrProtocol so callers can use errors.Is for programmatic detection.
func (e *ProtocolError) Unwrap() error { return ErrProtocol }
