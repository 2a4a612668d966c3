// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the rkl command tree.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/resonant-knowledge-lab/rkl/cmd/rkl/cli"
	"github.com/resonant-knowledge-lab/rkl/lib/version"
)

// Standard streams, replaced by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// Root builds the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "rkl",
		Description: `rkl: structured research telemetry.

Log records into date-partitioned telemetry files, inspect and repair
daily manifests, verify telemetry health, and export bundles for
publication.`,
		Subcommands: []*cli.Command{
			logCommand(),
			manifestCommand(),
			healthCommand(),
			exportCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(stdout, "rkl %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
