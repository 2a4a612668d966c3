// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package structlog

import (
	"log/slog"

	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/sampling"
	"github.com/resonant-knowledge-lab/rkl/lib/schema"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
)

// Option configures collaborators of a Logger.
type Option func(*options)

type options struct {
	clock   clock.Clock
	source  sampling.Source
	logger  *slog.Logger
	catalog *schema.Catalog
	writer  sink.Writer
}

// WithClock sets the clock used for timestamps, partition dates, and
// the manifest date.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRandomSource sets the sampler's random source.
func WithRandomSource(source sampling.Source) Option {
	return func(o *options) { o.source = source }
}

// WithLogger sets the operational logger for warnings and debug
// output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCatalog replaces the default schema catalog.
func WithCatalog(catalog *schema.Catalog) Option {
	return func(o *options) { o.catalog = catalog }
}

// WithWriter replaces the writer selected from Config.Format and
// Config.Compression.
func WithWriter(writer sink.Writer) Option {
	return func(o *options) { o.writer = writer }
}

// LogOption modifies a single Log call.
type LogOption func(*logOptions)

type logOptions struct {
	force bool
}

// ForceWrite flushes the record's buffer immediately after appending,
// regardless of its length.
func ForceWrite() LogOption {
	return func(o *logOptions) { o.force = true }
}
