// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package sink serializes telemetry batches into partition files.
//
// Two formats exist. [Columnar] is the primary format: a column-major
// block of CBOR values behind a small header, compressed with zstd (the
// default) or lz4. [NDJSON] is the row-oriented fallback: one JSON
// object per line, fields in record order, readable with any text tool.
//
// The format is chosen once, when the logger is built (see [New]).
// Readers pick the decoder from the file extension ([ReadFile]), so a
// partition directory may hold files of both formats.
//
// Columnar file layout:
//
//	offset 0  "RKLC"           magic
//	offset 4  version          1
//	offset 5  compression tag  0 none, 1 lz4, 2 zstd
//	offset 6  compressed CBOR  {rows, columns: [{name, values, absent}]}
//
// Columns appear in first-seen key order across the batch. Every
// column's values array has one entry per row; rows lacking the field
// hold null there and are listed in absent, which keeps an explicit
// null distinct from a missing field. Nested mappings inside a column
// are encoded as CBOR maps in canonical key order, so their field order
// is not retained.
package sink
