// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"errors"

	"github.com/tidwall/gjson"
)

type (
	// Response is the outer control-plane envelope. *snapctl.Document
	// satisfies it.
	Response interface {
		Get(path string) gjson.Result
	}

	// Payload is the inner configuration document carried in result.stdout.
	Payload struct {
		root gjson.Result
	}
)

// ExtractPayload reads result.stdout from the envelope. The field must exist
// and be a JSON string; its content is returned unparsed.
func ExtractPayload(resp Response) (string, error) {
	stdout := resp.Get("result.stdout")
	if !stdout.Exists() {
		return "", &PayloadError{
			Reason:        "result.stdout is missing",
			ServerMessage: resp.Get("result.message").String(),
		}
	}
	if stdout.Type != gjson.String {
		return "", &PayloadError{Reason: "result.stdout is a " + stdout.Type.String() + ", not a string"}
	}
	return stdout.Str, nil
}

// ParsePayload parses the text of result.stdout as the inner document.
func ParsePayload(text string) (*Payload, error) {
	if !gjson.Valid(text) {
		return nil, &PayloadError{Reason: "result.stdout is not valid JSON", Err: errors.New(preview(text))}
	}
	return &Payload{root: gjson.Parse(text)}, nil
}

// GlobalEnvFile returns the top-level envfile path, if it is a string.
func (p *Payload) GlobalEnvFile() (string, bool) {
	return stringField(p.root.Get("envfile"))
}

// AppEnvFile returns apps[app].envfile, if it is a string.
func (p *Payload) AppEnvFile(app string) (string, bool) {
	return stringField(p.app(app).Get("envfile"))
}

// GlobalEnv returns the top-level env object. The result does not exist when
// env is absent or not an object.
func (p *Payload) GlobalEnv() gjson.Result {
	return objectField(p.root.Get("env"))
}

// AppEnv returns the apps[app].env object under the same rules as GlobalEnv.
func (p *Payload) AppEnv(app string) gjson.Result {
	return objectField(p.app(app).Get("env"))
}

// app finds apps[name] by exact key comparison, so names containing gjson
// path metacharacters ('.', '*', '?') are looked up literally.
func (p *Payload) app(name string) gjson.Result {
	var found gjson.Result
	apps := p.root.Get("apps")
	if !apps.IsObject() {
		return found
	}
	apps.ForEach(func(key, value gjson.Result) bool {
		if key.Str == name {
			found = value
			return false
		}
		return true
	})
	return found
}

func stringField(r gjson.Result) (string, bool) {
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

func objectField(r gjson.Result) gjson.Result {
	if !r.IsObject() {
		return gjson.Result{}
	}
	return r
}

func preview(text string) string {
	const limit = 64
	if text == "" {
		return "empty string"
	}
	if len(text) > limit {
		return "starts with " + text[:limit] + "..."
	}
	return "got " + text
}
