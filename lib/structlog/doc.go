// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package structlog is the telemetry logger that pipeline agents call.
//
// A [Logger] accepts records tagged with an artifact type and runs each
// one through a fixed pipeline:
//
//	sample -> enrich -> validate (advisory) -> buffer -> write
//
// Sampling drops records by per-type probability. Enrichment adds
// rkl_version, a UTC timestamp, and the Type III compliance flag
// without overwriting caller fields. Validation against the schema
// catalog only logs a warning; incomplete records are still written.
// Buffers flush to a new partition file when they reach the batch size,
// when a record is logged with [ForceWrite], on [Logger.Flush], and on
// [Logger.Close].
//
// Close also merges this logger's per-type counters into the shared
// daily manifest. Every logger must be closed; [Run] wraps a function
// so the logger is closed on every exit path, including panics:
//
//	err := structlog.Run(cfg, func(logger *structlog.Logger) error {
//		return logger.Log("execution_context", rec)
//	})
//
// All methods are safe for concurrent use. Calls block while a batch
// is being written.
package structlog
