// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrSession is returned when the sandbox variables are missing or empty.
var ErrSession = errors.New("incomplete snap session")

// Session holds the variables snapd sets for the launched app.
type Session struct {
	// ContextID authorizes the snapctl request. An empty value is rejected by
	// the client before it dials.
	ContextID string `env:"SNAP_CONTEXT"`
	// App selects the apps.<name> scope of the configuration.
	App string `env:"env_alias,required,notEmpty"`
}

// LoadSession reads the Session from environ, a list of "KEY=VALUE" entries
// such as os.Environ().
func LoadSession(environ []string) (*Session, error) {
	var s Session
	if err := env.ParseWithOptions(&s, env.Options{Environment: env.ToMap(environ)}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}
	return &s, nil
}
