// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest maintains the daily telemetry manifest: one JSON
// file per UTC date summarizing how many rows and writes each artifact
// type produced that day.
//
// Several independent processes log on the same day, and each one
// merges its counters into the shared file when it closes:
//
//  1. read {base}/manifests/{YYYY-MM-DD}.json (missing or corrupt
//     files start from an empty skeleton; corruption is logged, never
//     fatal),
//  2. add this process's rows and writes to every type it touched,
//  3. refresh generated_at and rkl_version,
//  4. write a temp file in the same directory, fsync it, and rename it
//     over the target.
//
// The rename makes each merge atomic with respect to readers, but two
// processes merging at the same moment can both read the old file and
// the later rename wins, losing the other's counts. [Reconciler.Lock]
// closes that window with an advisory file lock on platforms that
// support flock; it is off by default. [Rebuild] recomputes a day's
// manifest from the partition files themselves when counts have been
// lost.
package manifest
