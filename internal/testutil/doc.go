// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the snapenv test suites:
// fixture files that fail the test on error and canned snapctl responses.
package testutil
