// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"maps"
	"slices"
	"strings"
)

// Sources, in the order the resolver applies them.
const (
	SourceGlobalEnvFile Source = iota + 1
	SourceAppEnvFile
	SourceGlobalEnv
	SourceAppEnv
)

type (
	// Source identifies where an assignment came from.
	Source int

	// Assignment is a single environment write.
	Assignment struct {
		Key    string
		Value  string
		Source Source
	}

	// Mutation is an ordered sequence of environment writes. Later writes to
	// the same key win.
	Mutation struct {
		assignments []Assignment
	}
)

// String returns the configuration field the source corresponds to.
func (s Source) String() string {
	switch s {
	case SourceGlobalEnvFile:
		return "envfile"
	case SourceAppEnvFile:
		return "apps.envfile"
	case SourceGlobalEnv:
		return "env"
	case SourceAppEnv:
		return "apps.env"
	default:
		return "unknown"
	}
}

// Scope returns "global" or "app".
func (s Source) Scope() string {
	if s == SourceAppEnvFile || s == SourceAppEnv {
		return "app"
	}
	return "global"
}

func (m *Mutation) add(assignments ...Assignment) {
	m.assignments = append(m.assignments, assignments...)
}

// Len returns the number of writes, including overwritten ones.
func (m *Mutation) Len() int { return len(m.assignments) }

// Assignments returns a copy of the writes in application order.
func (m *Mutation) Assignments() []Assignment { return slices.Clone(m.assignments) }

// Lookup returns the last value written for key.
func (m *Mutation) Lookup(key string) (string, bool) {
	for i := len(m.assignments) - 1; i >= 0; i-- {
		if m.assignments[i].Key == key {
			return m.assignments[i].Value, true
		}
	}
	return "", false
}

// Map collapses the writes into their final key/value state.
func (m *Mutation) Map() map[string]string {
	env := make(map[string]string, len(m.assignments))
	for _, a := range m.assignments {
		env[a.Key] = a.Value
	}
	return env
}

// Keys returns the distinct keys written, sorted.
func (m *Mutation) Keys() []string {
	return slices.Sorted(maps.Keys(m.Map()))
}

// Apply overlays the writes onto base, a list of "KEY=VALUE" entries such as
// os.Environ(). Entries of base keep their position; new keys are appended in
// first-write order. Malformed base entries are dropped.
func (m *Mutation) Apply(base []string) []string {
	order := make([]string, 0, len(base)+len(m.assignments))
	values := make(map[string]string, len(base)+len(m.assignments))

	set := func(key, value string) {
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = value
	}

	for _, entry := range base {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		set(key, value)
	}
	for _, a := range m.assignments {
		set(a.Key, a.Value)
	}

	env := make([]string, 0, len(order))
	for _, key := range order {
		env = append(env, key+"="+values[key])
	}
	return env
}
