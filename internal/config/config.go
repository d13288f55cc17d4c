// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/snapenv/snapenv/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "snapenv"
	// ConfigFileName is the config file looked up in ConfigDir.
	ConfigFileName = "config.cue"
	// SnapConfigFileName is the config file looked up in $SNAP_USER_DATA.
	SnapConfigFileName = "snapenv.cue"
	// EnvPrefix prefixes environment overrides, e.g. SNAPENV_LAUNCH_MODE.
	EnvPrefix = "SNAPENV"
	// ConfigPathEnv names an explicit config file, like --config.
	ConfigPathEnv = EnvPrefix + "_CONFIG"

	// MaxConfigFileSize bounds the config file read.
	MaxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// configSource is one place a config file may come from.
type configSource struct {
	path string
	// explicit sources must exist; implicit ones are skipped when missing.
	explicit bool
	origin   string
}

// ConfigDir returns the snapenv configuration directory under the user's
// config home ($XDG_CONFIG_HOME or ~/.config on Linux).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// sources lists the config file candidates in lookup order.
func sources(opts LoadOptions) []configSource {
	var out []configSource
	if opts.ConfigFilePath != "" {
		out = append(out, configSource{path: opts.ConfigFilePath, explicit: true, origin: "--config"})
	}
	if p := os.Getenv(ConfigPathEnv); p != "" {
		out = append(out, configSource{path: p, explicit: true, origin: "$" + ConfigPathEnv})
	}
	if dir := os.Getenv("SNAP_USER_DATA"); dir != "" {
		out = append(out, configSource{path: filepath.Join(dir, SnapConfigFileName), origin: "$SNAP_USER_DATA"})
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		dir, _ = ConfigDir()
	}
	if dir != "" {
		out = append(out, configSource{path: filepath.Join(dir, ConfigFileName), origin: "config directory"})
	}
	return out
}

// loadWithOptions performs option-driven config loading. The first source
// that exists wins; the others are not read.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("socket_path", string(defaults.SocketPath))
	v.SetDefault("endpoint", string(defaults.Endpoint))
	v.SetDefault("launch_mode", string(defaults.LaunchMode))
	v.SetDefault("log_level", string(defaults.LogLevel))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	for _, src := range sources(opts) {
		if !fileExists(src.path) {
			if !src.explicit {
				continue
			}
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(src.path).
				WithSuggestion(fmt.Sprintf("Verify the path given by %s", src.origin)).
				WithSuggestion("Check that the file exists and is a regular file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", src.path)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, src.path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(src.path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		resolvedPath = src.path
		break
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Path = resolvedPath

	// Environment overrides bypass the CUE schema.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion(fmt.Sprintf("Check %s_* environment variables", EnvPrefix)).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > MaxConfigFileSize {
		return fmt.Errorf("%s: file size %d exceeds limit of %d bytes", path, len(data), MaxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge keeps the defaults for omitted keys; env overrides still apply.
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && info.Mode().IsRegular()
}
