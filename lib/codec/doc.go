// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared binary encoding configuration for
// telemetry files.
//
// The repository uses two serialization formats with a clear boundary:
//
//   - JSON for everything a human or an external tool reads directly:
//     NDJSON partition files, the daily manifest, CLI --json output,
//     and the export bundle manifest.
//   - CBOR for columnar partition files, where the batch is stored
//     column-major and compressed.
//
// This package owns the CBOR encoding and decoding modes so that every
// writer encodes identically. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer encoding,
// no indefinite-length items. The same batch always produces identical
// bytes, which keeps fingerprints of exported files stable.
//
// Compressed streams are produced by [NewCompressWriter] and read by
// [NewDecompressReader]. The [Compression] tag is a protocol constant
// written into file headers by the columnar writer.
package codec
