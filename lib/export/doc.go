// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package export packages a telemetry tree into a zip bundle for
// publishing as a research dataset.
//
// A bundle holds every partition file and daily manifest under the
// base directory, optionally limited to dates on or after a cutoff,
// at the same relative paths, plus a manifest.json at the archive
// root describing the export. Columnar files are already compressed
// and are stored; everything else is deflated.
package export
