// SPDX-License-Identifier: MPL-2.0

//go:build unix

package cmd

import (
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snapenv/snapenv/internal/snapctl"
	"github.com/snapenv/snapenv/internal/testutil"

	"github.com/rogpeppe/go-internal/testscript"
)

// payloadFile is the inner snapctl document a script serves. "$WORK" in it
// is replaced with the script's work directory.
const payloadFile = "payload.json"

// TestMain registers snapenv as a command for the scripts: the test binary
// re-executes itself as snapenv, so exec mode replaces a real process.
func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"snapenv": Execute,
	})
}

// TestCLI runs the scripts in testdata/script against a snapd stub started
// for each script.
func TestCLI(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir:   filepath.Join("testdata", "script"),
		Setup: setupScript,
		// Continue running all scripts even if one fails
		ContinueOnError: true,
	})
}

// setupScript starts a snapd stub serving the script's payload and points
// snapenv at it through the environment.
func setupScript(env *testscript.Env) error {
	inner := "{}"
	raw, err := os.ReadFile(filepath.Join(env.WorkDir, payloadFile))
	switch {
	case err == nil:
		inner = strings.ReplaceAll(string(raw), "$WORK", env.WorkDir)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	body, err := testutil.EncodeSnapctlResponse(inner)
	if err != nil {
		return err
	}

	// sun_path is limited to ~108 bytes, which the work directory can exceed.
	dir, err := os.MkdirTemp("", "snapd")
	if err != nil {
		return err
	}
	socketPath := filepath.Join(dir, "snapd.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		_ = os.RemoveAll(dir)
		return err
	}

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != snapctl.DefaultEndpoint || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})}
	go func() { _ = srv.Serve(listener) }()
	env.Defer(func() {
		_ = srv.Close()
		_ = os.RemoveAll(dir)
	})

	env.Setenv("SNAPENV_SOCKET_PATH", socketPath)
	env.Setenv("SNAP_CONTEXT", "ctx1")
	env.Setenv("env_alias", "app1")
	return nil
}
