// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"errors"
	"testing"
)

func TestExtractPayload(t *testing.T) {
	t.Parallel()

	text, err := ExtractPayload(jsonResponse(`{"result":{"stdout":"{\"env\":{}}"}}`))
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}
	if text != `{"env":{}}` {
		t.Errorf("ExtractPayload() = %q", text)
	}

	_, err = ExtractPayload(jsonResponse(`{"result":{"stdout":7}}`))
	var payloadErr *PayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("ExtractPayload() error = %v, want *PayloadError", err)
	}
	if payloadErr.Reason != "result.stdout is a Number, not a string" {
		t.Errorf("Reason = %q", payloadErr.Reason)
	}
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	p, err := ParsePayload(`{
		"envfile": "/g.env",
		"env": {"A": "1"},
		"apps": {"web": {"envfile": "/w.env", "env": {"B": "2"}}}
	}`)
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}

	if path, ok := p.GlobalEnvFile(); !ok || path != "/g.env" {
		t.Errorf("GlobalEnvFile() = %q, %v", path, ok)
	}
	if path, ok := p.AppEnvFile("web"); !ok || path != "/w.env" {
		t.Errorf("AppEnvFile(web) = %q, %v", path, ok)
	}
	if _, ok := p.AppEnvFile("db"); ok {
		t.Error("AppEnvFile(db) reported a path for an unknown app")
	}
	if got := p.GlobalEnv().Get("A").String(); got != "1" {
		t.Errorf("GlobalEnv().A = %q", got)
	}
	if got := p.AppEnv("web").Get("B").String(); got != "2" {
		t.Errorf("AppEnv(web).B = %q", got)
	}
	if p.AppEnv("db").Exists() {
		t.Error("AppEnv(db) exists for an unknown app")
	}

	// Valid JSON that is not an object resolves to nothing.
	p, err = ParsePayload(`[1,2,3]`)
	if err != nil {
		t.Fatalf("ParsePayload(array) error = %v", err)
	}
	if p.GlobalEnv().Exists() || p.AppEnv("x").Exists() {
		t.Error("array payload produced env objects")
	}

	_, err = ParsePayload("")
	if !errors.Is(err, ErrPayload) {
		t.Errorf("ParsePayload(\"\") error = %v, want ErrPayload", err)
	}
}
