// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// short suggestions. An error may also point at an Issue, a catalog entry with
// longer Markdown guidance that the CLI renders with glamour in verbose mode.
package issue
