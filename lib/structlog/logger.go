// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package structlog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/resonant-knowledge-lab/rkl/lib/batch"
	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/enrich"
	"github.com/resonant-knowledge-lab/rkl/lib/manifest"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
	"github.com/resonant-knowledge-lab/rkl/lib/sampling"
	"github.com/resonant-knowledge-lab/rkl/lib/schema"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
)

// ErrClosed is returned by every operation on a closed Logger,
// including a second Close.
var ErrClosed = errors.New("telemetry logger is closed")

// Logger is the telemetry logger facade.
type Logger struct {
	config     Config
	logger     *slog.Logger
	clock      clock.Clock
	catalog    *schema.Catalog
	sampler    *sampling.Sampler
	enricher   *enrich.Enricher
	writer     sink.Writer
	batches    *batch.Manager
	reconciler *manifest.Reconciler

	// lifecycle is held shared by Log and Flush and exclusively by
	// Close, so no record can be appended after the final flush.
	lifecycle sync.RWMutex
	closed    bool
}

// New validates config, creates the base directory, and builds the
// logging pipeline.
func New(config Config, opts ...Option) (*Logger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.catalog == nil {
		o.catalog = schema.Default()
	}
	if o.writer == nil {
		writer, err := sink.New(config.Format, config.Compression)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		o.writer = writer
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	logger := &Logger{
		config:   config,
		logger:   o.logger,
		clock:    o.clock,
		catalog:  o.catalog,
		sampler:  sampling.New(config.Sampling, o.source),
		enricher: &enrich.Enricher{Version: config.RKLVersion, Type3Enforcement: config.Type3Enforcement, Clock: o.clock},
		writer:   o.writer,
		reconciler: &manifest.Reconciler{
			BaseDir: config.BaseDir,
			Version: config.RKLVersion,
			Schemas: o.catalog,
			Clock:   o.clock,
			Logger:  o.logger,
			Lock:    config.ManifestLock,
		},
	}
	logger.batches = batch.NewManager(config.BatchSize, logger.writeBatch)
	return logger, nil
}

// writeBatch is the batch manager's flush target. The partition date
// and file time come from the clock at flush time.
func (l *Logger) writeBatch(artifactType string, records []*record.Record) error {
	path, err := sink.WritePartition(l.writer, l.config.BaseDir, artifactType, l.clock.Now(), records)
	if err != nil {
		l.logger.Error("telemetry batch write failed",
			"artifact_type", artifactType,
			"rows", len(records),
			"error", err,
		)
		return err
	}
	l.logger.Debug("telemetry batch written",
		"artifact_type", artifactType,
		"rows", len(records),
		"path", path,
	)
	return nil
}

// Log submits rec under artifactType. rec is copied; the caller may
// reuse it after Log returns. A sampled-out record returns nil. The
// returned error is non-nil when the record triggered a flush that
// failed.
func (l *Logger) Log(artifactType string, rec *record.Record, opts ...LogOption) error {
	if !partition.ValidArtifactType(artifactType) {
		return fmt.Errorf("invalid artifact type %q", artifactType)
	}
	if rec == nil {
		return fmt.Errorf("nil record for %s", artifactType)
	}
	var o logOptions
	for _, opt := range opts {
		opt(&o)
	}

	l.lifecycle.RLock()
	defer l.lifecycle.RUnlock()
	if l.closed {
		return ErrClosed
	}

	if !l.sampler.ShouldSample(artifactType) {
		l.logger.Debug("record sampled out", "artifact_type", artifactType)
		return nil
	}

	enriched := l.enricher.Enrich(rec)

	if l.config.ValidateSchema {
		ok, problems := l.catalog.Validate(artifactType, enriched)
		switch {
		case !ok:
			l.logger.Warn("record failed schema validation",
				"artifact_type", artifactType,
				"problems", problems,
			)
		case len(problems) > 0:
			l.logger.Warn("record not validated",
				"artifact_type", artifactType,
				"problems", problems,
			)
		}
	}

	return l.batches.Append(artifactType, enriched, o.force)
}

// LogMap converts m to a record (keys sorted) and logs it.
func (l *Logger) LogMap(artifactType string, m map[string]any, opts ...LogOption) error {
	rec, err := record.FromMap(m)
	if err != nil {
		return fmt.Errorf("converting %s record: %w", artifactType, err)
	}
	return l.Log(artifactType, rec, opts...)
}

// Flush writes the buffer for artifactType, or every buffer when
// artifactType is empty.
func (l *Logger) Flush(artifactType string) error {
	l.lifecycle.RLock()
	defer l.lifecycle.RUnlock()
	if l.closed {
		return ErrClosed
	}
	if artifactType == "" {
		return l.batches.FlushAll()
	}
	return l.batches.Flush(artifactType)
}

// Close flushes every buffer and, when AutoManifest is on, merges the
// counters into the daily manifest. The manifest is written even when
// nothing was logged and even if a flush failed; both errors are
// returned joined. After Close every
// method returns ErrClosed.
func (l *Logger) Close() error {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true

	flushErr := l.batches.FlushAll()
	if !l.config.AutoManifest {
		return flushErr
	}

	stats := l.batches.Stats()
	path, mergeErr := l.reconciler.Merge(stats)
	if mergeErr != nil {
		mergeErr = fmt.Errorf("merging manifest: %w", mergeErr)
	} else {
		l.logger.Debug("telemetry logger closed", "manifest", path, "artifact_types", len(stats))
	}
	return errors.Join(flushErr, mergeErr)
}

// Stats returns a snapshot of per-type row, write, and failure counts.
func (l *Logger) Stats() map[string]batch.Counts {
	return l.batches.Stats()
}

// ManifestPath returns the path of today's manifest.
func (l *Logger) ManifestPath() string {
	return l.reconciler.Path()
}

// Config returns the configuration the logger was built with.
func (l *Logger) Config() Config {
	return l.config
}

// Run builds a Logger, passes it to fn, and closes it on every exit
// path of fn. If fn panics the logger is closed and the panic
// continues. Errors from fn and Close are joined; closing a logger fn
// already closed is not an error.
func Run(config Config, fn func(*Logger) error, opts ...Option) error {
	logger, err := New(config, opts...)
	if err != nil {
		return err
	}

	returned := false
	defer func() {
		if !returned {
			logger.Close()
		}
	}()

	fnErr := fn(logger)
	returned = true

	closeErr := logger.Close()
	if errors.Is(closeErr, ErrClosed) {
		closeErr = nil
	}
	return errors.Join(fnErr, closeErr)
}
