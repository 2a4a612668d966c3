// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the configuration file shared by the rkl
// command and by pipeline programs that embed the telemetry logger.
//
// Configuration comes from a single file named by the RKL_CONFIG
// environment variable ([Load]) or passed explicitly ([LoadFile]).
// Files ending in .yaml or .yml are parsed as YAML; files ending in
// .json or .jsonc are parsed as JSON with comments and trailing commas
// allowed. Values not present in the file keep their [Default].
//
// Path fields support ${VAR} and ${VAR:-default} expansion, with
// ${RKL_BASE} bound to the expanded logger.base_dir so that other
// paths can be placed relative to it.
//
// Key exports:
//
//   - [Config] -- logger settings plus the paths and health sections
//   - [Default] -- the configuration used when no file is given
//   - [Load], [LoadFile], [Resolve] -- entry points for loading
package config
