// SPDX-License-Identifier: MPL-2.0

// Package config handles snapenv's own settings and the snap session.
//
// Settings are loaded with Viper from an optional CUE file validated against
// an embedded #Config schema (config_schema.cue). The file is the first of
// --config, $SNAPENV_CONFIG, $SNAP_USER_DATA/snapenv.cue and
// <user config dir>/snapenv/config.cue that exists. SNAPENV_<KEY> environment
// variables override file values.
//
// The session variables snapd sets for each app (SNAP_CONTEXT and env_alias)
// are read separately by LoadSession.
package config
