// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema holds the static catalog of telemetry artifact
// schemas.
//
// Each artifact type (execution_context, boundary_event, ...) has at
// most one [Schema]: a version tag, a set of required fields, and an
// informative map of declared field types. Validation is advisory. A
// record missing required fields is reported through the problems list
// but the logger still persists it; the catalog never blocks ingestion.
//
// [Default] returns a catalog preloaded with every artifact type the
// summarization pipeline emits. Schemas are read-only after
// registration, so a catalog may be shared between goroutines once it
// has been built.
package schema
