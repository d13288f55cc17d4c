// SPDX-License-Identifier: MPL-2.0

package snapctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

const (
	// DefaultSocketPath is the control-plane socket snapd exposes inside the sandbox.
	DefaultSocketPath = "/run/snapd-snap.socket"
	// DefaultEndpoint is the snapctl endpoint served on that socket.
	DefaultEndpoint = "/v2/snapctl"

	// MaxResponseSize bounds response body reads. A snapctl "get" result is a
	// few kilobytes; the limit only guards against a runaway server.
	MaxResponseSize int64 = 16 << 20
)

// EnvQueryArgs is the snapctl argument vector requesting the three settings
// the resolver consumes.
var EnvQueryArgs = []string{"get", "env", "envfile", "apps"}

type (
	// Fetcher retrieves the configuration document for a session.
	Fetcher interface {
		Fetch(ctx context.Context, contextID string) (*Document, error)
	}

	// Client issues snapctl requests over the control-plane unix socket.
	Client struct {
		socketPath string
		endpoint   string
		args       []string
		httpClient *http.Client
	}

	// request is the JSON body snapd's snapctl endpoint expects.
	request struct {
		ContextID string   `json:"context-id"`
		Args      []string `json:"args"`
	}
)

// NewClient creates a Client for the given socket and endpoint.
// Empty values fall back to DefaultSocketPath and DefaultEndpoint.
func NewClient(socketPath, endpoint string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		socketPath: socketPath,
		endpoint:   endpoint,
		args:       EnvQueryArgs,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return (&net.Dialer{}).DialContext(ctx, "unix", socketPath)
				},
				DisableKeepAlives: true,
			},
		},
	}
}

// SocketPath returns the socket this client dials.
func (c *Client) SocketPath() string { return c.socketPath }

// Endpoint returns the HTTP path this client posts to.
func (c *Client) Endpoint() string { return c.endpoint }

// Fetch posts the env query for contextID and returns the validated response.
// It makes a single attempt.
func (c *Client) Fetch(ctx context.Context, contextID string) (*Document, error) {
	if contextID == "" {
		return nil, &TransportError{Op: "authorize", SocketPath: c.socketPath, Err: errors.New("context id is empty (is SNAP_CONTEXT set?)")}
	}

	body, err := json.Marshal(request{ContextID: contextID, Args: c.args})
	if err != nil {
		return nil, fmt.Errorf("encode snapctl request: %w", err)
	}

	// The host part is ignored by the unix dialer but required by net/http.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://localhost"+c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build snapctl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", SocketPath: c.socketPath, Err: err}
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read body from", SocketPath: c.socketPath, Err: err}
	}

	return ParseDocument(raw)
}

// readBody accumulates the response until the stream reports completion.
// A stream that ends early surfaces as io.ErrUnexpectedEOF from net/http.
func readBody(body io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return raw, nil
}
