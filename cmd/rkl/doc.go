// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// rkl is the command-line companion to the telemetry logger: it logs
// NDJSON records from other programs, inspects and repairs daily
// manifests, checks the health of a telemetry tree, and packages it
// for publication.
//
// Usage:
//
//	rkl log --type <artifact_type> < records.ndjson
//	rkl manifest show [--date YYYY-MM-DD]
//	rkl manifest fix [--date YYYY-MM-DD]
//	rkl health [--fix]
//	rkl export [--output bundle.zip] [--since YYYY-MM-DD]
//	rkl version
//
// Every command accepts --config (or RKL_CONFIG) and --base-dir.
package main
