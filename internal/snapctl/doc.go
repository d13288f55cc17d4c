// SPDX-License-Identifier: MPL-2.0

// Package snapctl talks to the snap control-plane service over its local socket.
//
// The service is only reachable through a filesystem socket. Every request is a
// single HTTP POST to the snapctl endpoint carrying the session context id and a
// snapctl argument vector; the response is a JSON envelope whose result.stdout
// field holds the command's output as a string. This package fetches and
// validates the envelope. Interpreting result.stdout belongs to envresolve.
//
// There are no retries and no client-side timeout: Fetch makes exactly one
// attempt and is bounded only by the caller's context.
package snapctl
