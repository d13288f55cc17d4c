// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// MustWriteFile writes content to dir/name and returns the full path.
// The test fails immediately if the write fails.
func MustWriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// MustClose closes c. The test fails if the close fails.
func MustClose(t testing.TB, c io.Closer) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Errorf("failed to close: %v", err)
	}
}

// SnapctlResponse wraps stdout in the sync envelope snapd returns for a
// successful snapctl call.
func SnapctlResponse(t testing.TB, stdout string) string {
	t.Helper()
	body, err := EncodeSnapctlResponse(stdout)
	if err != nil {
		t.Fatalf("failed to build snapctl response: %v", err)
	}
	return body
}

// EncodeSnapctlResponse is SnapctlResponse for callers without a testing.TB,
// such as testscript setup hooks.
func EncodeSnapctlResponse(stdout string) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"type":        "sync",
		"status-code": 200,
		"result":      map[string]string{"stdout": stdout},
	})
	return string(raw), err
}

// SnapctlError builds the error envelope snapd returns for a rejected call.
func SnapctlError(t testing.TB, status int, message string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"type":        "error",
		"status-code": status,
		"result":      map[string]string{"message": message},
	})
	if err != nil {
		t.Fatalf("failed to build snapctl error: %v", err)
	}
	return string(raw)
}
