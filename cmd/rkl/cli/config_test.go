// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/resonant-knowledge-lab/rkl/lib/config"
)

func TestConfigFlagsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rkl.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  base_dir: /from/file\n  batch_size: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := ConfigFlags{Path: path}
	cfg, err := flags.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.BaseDir != "/from/file" || cfg.Logger.BatchSize != 7 {
		t.Errorf("logger = %+v", cfg.Logger)
	}

	flags.BaseDir = "/from/flag"
	cfg, err = flags.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.BaseDir != "/from/flag" {
		t.Errorf("base_dir = %s, want flag override", cfg.Logger.BaseDir)
	}
}

func TestConfigFlagsLoadValidates(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	path := filepath.Join(t.TempDir(), "rkl.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  batch_size: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flags := ConfigFlags{Path: path}
	if _, err := flags.Load(); err == nil {
		t.Error("expected validation error for negative batch_size")
	}

	defaults := ConfigFlags{}
	if _, err := defaults.Load(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}
