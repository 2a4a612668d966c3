// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package partition owns the on-disk layout of telemetry data.
//
// Batches land in date/type partitions:
//
//	{base}/{artifact_type}/{YYYY}/{MM}/{DD}/{artifact_type}_{HHMMSS}.{ext}
//
// and daily manifests live beside them:
//
//	{base}/manifests/{YYYY-MM-DD}.json
//
// The date and time in a path come from the UTC wall clock at flush
// time, not from any timestamp inside the records. A batch flushed just
// after midnight therefore lands in the new day's partition even when
// its records were logged before midnight.
//
// Partition files are never appended to. [Create] opens a fresh file
// with O_EXCL; when several batches of one type flush within the same
// second, later files get a numeric suffix ({type}_{HHMMSS}_{n}.{ext}).
// [Scan] walks a base directory and returns every partition file in
// write order, which the manifest rebuilder, health check, and export
// bundler consume.
package partition
