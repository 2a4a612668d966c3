// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/structlog"
)

// EnvironmentVariable names the config file for Load.
const EnvironmentVariable = "RKL_CONFIG"

// Config is the complete configuration file.
type Config struct {
	// Logger configures the telemetry logger.
	Logger structlog.Config `yaml:"logger" json:"logger"`

	// Paths configures directories outside the telemetry tree.
	Paths PathsConfig `yaml:"paths" json:"paths"`

	// Health configures the telemetry health check.
	Health HealthConfig `yaml:"health" json:"health"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// BriefsDir holds the pipeline's *_articles.json outputs, which
	// the health check inspects for session ids.
	BriefsDir string `yaml:"briefs_dir" json:"briefs_dir"`

	// ExportDir is the default destination for export bundles.
	ExportDir string `yaml:"export_dir" json:"export_dir"`
}

// HealthConfig configures the telemetry health check.
type HealthConfig struct {
	// RequiredArtifacts must each appear in the latest manifest with
	// at least MinRows rows and have a readable partition file.
	RequiredArtifacts []string `yaml:"required_artifacts" json:"required_artifacts"`

	// MinRows is the per-artifact row floor.
	MinRows int64 `yaml:"min_rows" json:"min_rows"`
}

// Default returns the default configuration, rooted in the working
// directory the way the summarization pipeline lays out its data.
func Default() *Config {
	return &Config{
		Logger: structlog.DefaultConfig(filepath.Join("data", "research")),
		Paths: PathsConfig{
			BriefsDir: filepath.Join("content", "briefs"),
			ExportDir: "exports",
		},
		Health: HealthConfig{
			RequiredArtifacts: []string{
				"execution_context",
				"reasoning_graph_edge",
				"boundary_event",
				"governance_ledger",
			},
			MinRows: 1,
		},
	}
}

// Load loads configuration from the file named by RKL_CONFIG. Fails
// when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your rkl config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// Resolve loads path when non-empty, otherwise RKL_CONFIG when set,
// otherwise returns Default.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from path over the defaults and expands
// path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// loadFile merges the file at path into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (want .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Logger.BaseDir = expandVars(c.Logger.BaseDir, vars)
	vars["RKL_BASE"] = c.Logger.BaseDir

	c.Paths.BriefsDir = expandVars(c.Paths.BriefsDir, vars)
	c.Paths.ExportDir = expandVars(c.Paths.ExportDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, looking in
// vars first and then the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Logger.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logger: %w", err))
	}
	if c.Health.MinRows < 0 {
		errs = append(errs, fmt.Errorf("health.min_rows must not be negative, got %d", c.Health.MinRows))
	}
	for _, artifactType := range c.Health.RequiredArtifacts {
		if !partition.ValidArtifactType(artifactType) {
			errs = append(errs, fmt.Errorf("health.required_artifacts: invalid artifact type %q", artifactType))
		}
	}

	return errors.Join(errs...)
}
