// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/resonant-knowledge-lab/rkl/cmd/rkl/cli"
	"github.com/resonant-knowledge-lab/rkl/lib/export"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
)

type exportParams struct {
	cli.ConfigFlags
	cli.JSONOutput
	Output string `flag:"output,o" desc:"bundle path (default: paths.export_dir/telemetry_<time>.zip)"`
	Since  string `flag:"since" desc:"earliest partition date to include, YYYY-MM-DD"`
}

// exportResult is the --json output of rkl export.
type exportResult struct {
	Path     string           `json:"path"`
	Manifest *export.Manifest `json:"manifest"`
}

func exportCommand() *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Package telemetry into a zip bundle",
		Description: `Write every partition file and daily manifest under the base
directory into a zip archive, with a manifest.json describing the
export. The archive is written to a temp file and renamed into place.
Nothing is uploaded.`,
		Usage: "rkl export [--output bundle.zip] [--since YYYY-MM-DD] [flags]",
		Examples: []cli.Example{
			{
				Description: "Export the last week of telemetry",
				Command:     "rkl export --output /tmp/telemetry.zip --since 2025-11-04",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(args []string) error {
			cfg, err := params.Load()
			if err != nil {
				return err
			}
			options := export.Options{
				BaseDir: cfg.Logger.BaseDir,
				Logger:  cli.NewCommandLogger(params.Verbose).With("command", "export"),
			}
			if params.Since != "" {
				since, err := partition.ParseDate(params.Since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				options.Since = since
			}

			output := params.Output
			if output == "" {
				output = filepath.Join(cfg.Paths.ExportDir, export.DefaultName(time.Now()))
			}
			output, err = filepath.Abs(output)
			if err != nil {
				return err
			}

			result, err := export.BundleFile(output, options)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, exportResult{Path: output, Manifest: result}); done {
				return err
			}
			fmt.Fprintf(stdout, "exported %d files (%s) since %s to %s\n",
				result.FileCount, humanize.Bytes(uint64(result.Bytes)), result.Since, output)
			return nil
		},
	}
}
