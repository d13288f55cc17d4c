// SPDX-License-Identifier: MPL-2.0

// Package envresolve turns a snapctl "get env envfile apps" response into an
// ordered set of environment writes.
//
// The response is double encoded: the envelope's result.stdout is a string
// holding a second JSON document. ExtractPayload and ParsePayload handle the
// two stages separately. Resolve then sources the global and app environment
// files and applies the global and app env objects, in that order, into a
// Mutation. Nothing here modifies the process environment; the launcher
// applies the Mutation to the child it starts.
package envresolve
