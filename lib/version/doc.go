// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the rkl
// binaries and the default version tag stamped into telemetry.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// [RecordVersion] is separate from the binary version: it is the
// "rkl_version" tag written into every telemetry record and manifest
// when the caller does not configure one. Changing it changes what
// downstream dataset consumers see, so it moves only with the record
// format, not with every build.
package version
