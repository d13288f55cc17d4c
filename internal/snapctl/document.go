// SPDX-License-Identifier: MPL-2.0

package snapctl

import (
	"github.com/tidwall/gjson"
)

// maxDiagnosticBody bounds how much of a malformed body ends up in error messages.
const maxDiagnosticBody = 256

type (
	// Document is a validated control-plane response envelope.
	// Paths are evaluated with gjson syntax against the raw bytes, so object
	// members are visited in the order the server wrote them.
	Document struct {
		raw []byte
	}

	// Status summarizes the envelope fields snapd sets on every response.
	Status struct {
		// Type is "sync" for successful responses and "error" for failures.
		Type string
		// Code is the HTTP-like status-code reported inside the envelope.
		Code int
		// Message is result.message, set by snapd on error responses.
		Message string
	}
)

// ParseDocument validates raw as a single JSON document.
// It returns a ProtocolError when raw is empty or not well-formed.
func ParseDocument(raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, &ProtocolError{Reason: "empty body"}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &ProtocolError{Reason: "invalid JSON", Body: truncate(raw)}
	}
	return &Document{raw: raw}, nil
}

// Get evaluates a gjson path against the document.
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.raw, path)
}

// Raw returns the document bytes as received.
func (d *Document) Raw() []byte { return d.raw }

// Status returns the envelope status fields. Missing fields are left zero.
func (d *Document) Status() Status {
	fields := gjson.GetManyBytes(d.raw, "type", "status-code", "result.message")
	return Status{
		Type:    fields[0].String(),
		Code:    int(fields[1].Int()),
		Message: fields[2].String(),
	}
}

// IsError reports whether snapd flagged the response as an error.
func (s Status) IsError() bool { return s.Type == "error" }

func truncate(raw []byte) string {
	if len(raw) <= maxDiagnosticBody {
		return string(raw)
	}
	return string(raw[:maxDiagnosticBody]) + "..."
}
