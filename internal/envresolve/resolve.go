// SPDX-License-Identifier: MPL-2.0

package envresolve

import (
	"os"

	"github.com/tidwall/gjson"
)

type (
	// Options tunes Resolve.
	Options struct {
		// LookupEnv resolves references in environment files that are not
		// satisfied by the file itself or by earlier writes.
		// When nil, os.LookupEnv is used.
		LookupEnv LookupFunc
	}

	// Resolution is the outcome of a successful Resolve.
	Resolution struct {
		Mutation Mutation
		// Skipped lists nested settings that were ignored, in document order.
		Skipped []Skipped
	}
)

// Resolve computes the environment writes for app from a control-plane
// response. It does not touch the process environment.
//
// Writes are produced in this order, later ones winning on key collision:
//
//  1. top-level envfile
//  2. apps[app].envfile
//  3. top-level env
//  4. apps[app].env
//
// Any error aborts resolution and no partial Resolution is returned.
func Resolve(app string, resp Response, opts Options) (*Resolution, error) {
	text, err := ExtractPayload(resp)
	if err != nil {
		return nil, err
	}
	payload, err := ParsePayload(text)
	if err != nil {
		return nil, err
	}

	res := &Resolution{}
	hostLookup := opts.LookupEnv
	if hostLookup == nil {
		hostLookup = os.LookupEnv
	}
	lookup := func(key string) (string, bool) {
		if v, ok := res.Mutation.Lookup(key); ok {
			return v, true
		}
		return hostLookup(key)
	}

	if path, ok := payload.GlobalEnvFile(); ok {
		if err := res.source(path, SourceGlobalEnvFile, lookup); err != nil {
			return nil, err
		}
	}
	if path, ok := payload.AppEnvFile(app); ok {
		if err := res.source(path, SourceAppEnvFile, lookup); err != nil {
			return nil, err
		}
	}

	res.apply(payload.GlobalEnv(), SourceGlobalEnv)
	res.apply(payload.AppEnv(app), SourceAppEnv)

	return res, nil
}

func (r *Resolution) source(path string, source Source, lookup LookupFunc) error {
	assignments, err := SourceEnvFile(path, source, lookup)
	if err != nil {
		return err
	}
	r.Mutation.add(assignments...)
	return nil
}

func (r *Resolution) apply(obj gjson.Result, source Source) {
	if !obj.Exists() {
		return
	}
	assignments, skipped := settings(obj, source)
	r.Mutation.add(assignments...)
	r.Skipped = append(r.Skipped, skipped...)
}
