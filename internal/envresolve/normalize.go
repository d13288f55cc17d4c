// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Skipped records a setting that was not applied because its value is an
// object or an array, which cannot be represented as an environment variable.
type Skipped struct {
	Source Source
	Key    string
	// Raw is the offending JSON value as it appeared in the document.
	Raw string
}

// NormalizeKey uppercases key and replaces every '-' with '_'.
// Uppercasing uses full Unicode case mapping, so a rune may expand
// ("ß" becomes "SS"). It is idempotent:
// NormalizeKey(NormalizeKey(k)) == NormalizeKey(k).
func NormalizeKey(key string) string {
	// A Caser keeps state between calls, so each key gets its own.
	return strings.ReplaceAll(cases.Upper(language.Und).String(key), "-", "_")
}

// StringifyValue renders a scalar JSON value as text and strips one leading
// and one trailing double quote. Strings therefore keep their JSON escaping
// (a newline stays "\n"); numbers keep their literal text.
func StringifyValue(v gjson.Result) string {
	text := v.Raw
	if v.Type == gjson.String {
		text = encodeString(v.Str)
	}
	text = strings.TrimPrefix(text, `"`)
	return strings.TrimSuffix(text, `"`)
}

// settings converts an env object into assignments in document order.
func settings(obj gjson.Result, source Source) ([]Assignment, []Skipped) {
	var (
		assignments []Assignment
		skipped     []Skipped
	)
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() || value.IsArray() {
			skipped = append(skipped, Skipped{Source: source, Key: key.Str, Raw: value.Raw})
			return true
		}
		assignments = append(assignments, Assignment{
			Key:    NormalizeKey(key.Str),
			Value:  StringifyValue(value),
			Source: source,
		})
		return true
	})
	return assignments, skipped
}

// encodeString JSON-encodes s without HTML escaping.
func encodeString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
