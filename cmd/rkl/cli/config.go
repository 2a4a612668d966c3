// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/spf13/pflag"

	"github.com/resonant-knowledge-lab/rkl/lib/config"
)

// ConfigFlags are the flags shared by commands that read the
// configuration file. Embed in a params struct; BindFlags registers
// them through AddFlags.
type ConfigFlags struct {
	// Path is the config file. Empty falls back to RKL_CONFIG, then
	// to the defaults.
	Path string

	// BaseDir overrides logger.base_dir when set.
	BaseDir string

	// Verbose enables debug logging.
	Verbose bool
}

// AddFlags registers --config, --base-dir, and --verbose.
func (f *ConfigFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.Path, "config", "c", "", "config file (.yaml, .yml, .json, .jsonc); defaults to $"+config.EnvironmentVariable)
	flagSet.StringVar(&f.BaseDir, "base-dir", "", "telemetry base directory (overrides logger.base_dir)")
	flagSet.BoolVarP(&f.Verbose, "verbose", "v", false, "enable debug logging")
}

// Load resolves the configuration, applies flag overrides, and
// validates the result.
func (f *ConfigFlags) Load() (*config.Config, error) {
	cfg, err := config.Resolve(f.Path)
	if err != nil {
		return nil, err
	}
	if f.BaseDir != "" {
		cfg.Logger.BaseDir = f.BaseDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
