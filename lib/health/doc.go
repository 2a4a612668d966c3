// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package health verifies that a telemetry tree is producing usable
// data: a manifest exists with enough rows for every required artifact
// type, the newest partition file of each required type carries its
// schema's required fields with a UTC timestamp, and the pipeline's
// brief outputs carry the session id that joins them to telemetry.
//
// Checks produce [Result] values. Failures that a manifest rebuild
// can repair carry a fix closure; [ExecuteFixes] runs them.
//
//   - [Run] -- run every check for [Options]
//   - [Pass], [Fail], [FailWithFix], [Warn], [Skip] -- result constructors
//   - [Summarize] -- the aggregate view used for JSON output
package health
