// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the rkl binary: a tree of
// [Command] values dispatched by name, flags bound from tagged param
// structs ([FlagsFromParams]), typo suggestions for unknown commands
// and flags, [ExitError] for handled non-zero exits, and the shared
// --config handling in [ConfigFlags].
package cli
