// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package structlog

import (
	"errors"
	"fmt"

	"github.com/resonant-knowledge-lab/rkl/lib/codec"
	"github.com/resonant-knowledge-lab/rkl/lib/sampling"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
	"github.com/resonant-knowledge-lab/rkl/lib/version"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid logger configuration")

// Config controls a Logger. Start from DefaultConfig; the zero value
// disables enrichment flags and fails validation.
type Config struct {
	// BaseDir is the root of the partition tree. Required; created
	// if missing.
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// RKLVersion is stamped on every record and on the manifest.
	RKLVersion string `yaml:"rkl_version" json:"rkl_version"`

	// Type3Enforcement adds type3_compliant: true to records.
	Type3Enforcement bool `yaml:"type3_enforcement" json:"type3_enforcement"`

	// BatchSize is the per-type buffer length that triggers a write.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// Sampling maps artifact type to keep probability in [0,1].
	// Unlisted types are always kept.
	Sampling map[string]float64 `yaml:"sampling" json:"sampling"`

	// AutoManifest merges counters into the daily manifest on Close.
	AutoManifest bool `yaml:"auto_manifest" json:"auto_manifest"`

	// ValidateSchema checks records against the schema catalog and
	// logs a warning for missing required fields.
	ValidateSchema bool `yaml:"validate_schema" json:"validate_schema"`

	// Format is "columnar" or "ndjson".
	Format string `yaml:"format" json:"format"`

	// Compression is "zstd", "lz4", or "none" (columnar only).
	Compression string `yaml:"compression" json:"compression"`

	// ManifestLock serializes manifest merges across processes with
	// an advisory file lock.
	ManifestLock bool `yaml:"manifest_lock" json:"manifest_lock"`
}

// DefaultConfig returns the default configuration for baseDir.
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir:          baseDir,
		RKLVersion:       version.RecordVersion,
		Type3Enforcement: true,
		BatchSize:        100,
		Sampling:         map[string]float64{},
		AutoManifest:     true,
		ValidateSchema:   true,
		Format:           string(sink.FormatColumnar),
		Compression:      codec.CompressionZstd.String(),
	}
}

// Validate reports every problem with c. The returned error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.BaseDir == "" {
		errs = append(errs, errors.New("base_dir is required"))
	}
	if c.RKLVersion == "" {
		errs = append(errs, errors.New("rkl_version is required"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive, got %d", c.BatchSize))
	}
	if err := sampling.ValidateRates(c.Sampling); err != nil {
		errs = append(errs, err)
	}
	if _, err := sink.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := codec.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
