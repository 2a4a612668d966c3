// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package record defines the payload type handed to the telemetry
// logger.
//
// A [Record] is an ordered mapping from field name to [Value]. Values
// come from a small closed set of kinds: null, string, number, boolean,
// list, and nested mapping. Producers build records from ordinary Go
// values (see [Of], [FromMap], [Record.Set]); anything outside the
// closed set (channels, functions, structs, NaN) is rejected at
// construction rather than failing later inside a flush.
//
// Field order is preserved through JSON encoding and decoding, so an
// NDJSON partition file lists fields in the order the producer set
// them. Equality ([Record.Equal]) ignores order: two records are equal
// when they hold the same set of key/value pairs. Numbers built from Go
// integers stay integers on the wire; numbers compare by numeric value.
//
// Records are not safe for concurrent mutation. The logger clones every
// record it accepts, so a producer may keep reusing its own record
// after Log returns.
package record
