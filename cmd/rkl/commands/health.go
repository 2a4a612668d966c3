// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/resonant-knowledge-lab/rkl/cmd/rkl/cli"
	"github.com/resonant-knowledge-lab/rkl/lib/health"
	"github.com/resonant-knowledge-lab/rkl/lib/manifest"
	"github.com/resonant-knowledge-lab/rkl/lib/schema"
)

type healthParams struct {
	cli.ConfigFlags
	cli.JSONOutput
	BriefsDir string   `flag:"briefs-dir" desc:"directory of *_articles.json outputs (overrides paths.briefs_dir)"`
	MinRows   int64    `flag:"min-rows" desc:"row floor per required artifact (overrides health.min_rows)" default:"-1"`
	Require   []string `flag:"require" desc:"required artifact types (overrides health.required_artifacts)"`
	Fix       bool     `flag:"fix" desc:"rebuild a missing or unreadable manifest from partition files"`
}

// statusStyles colors the status column. ANSI 256-color codes keep
// the output readable on most terminals.
var statusStyles = map[health.Status]lipgloss.Style{
	health.StatusPass:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	health.StatusFixed: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	health.StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	health.StatusFail:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	health.StatusSkip:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var nameStyle = lipgloss.NewStyle().Width(32)

func healthCommand() *cli.Command {
	var params healthParams

	return &cli.Command{
		Name:    "health",
		Summary: "Check that telemetry is being produced correctly",
		Description: `Verify a telemetry tree:

  - the newest daily manifest exists and is readable
  - every required artifact type has at least min_rows rows in it
  - the newest partition file of each required type has its schema's
    required fields and a UTC timestamp ending in Z
  - the newest *_articles.json brief carries a session_id

Exits 1 when any check fails. Warnings do not fail the run.`,
		Usage: "rkl health [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the configured tree",
				Command:     "rkl health",
			},
			{
				Description: "Repair a missing manifest, then re-check",
				Command:     "rkl health --fix",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("health", &params)
		},
		Run: func(args []string) error {
			cfg, err := params.Load()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(params.Verbose).With("command", "health")

			options := health.Options{
				BaseDir:           cfg.Logger.BaseDir,
				BriefsDir:         cfg.Paths.BriefsDir,
				RequiredArtifacts: cfg.Health.RequiredArtifacts,
				MinRows:           cfg.Health.MinRows,
				Catalog:           schema.Default(),
			}
			if params.BriefsDir != "" {
				options.BriefsDir = params.BriefsDir
			}
			if params.MinRows >= 0 {
				options.MinRows = params.MinRows
			}
			if len(params.Require) > 0 {
				options.RequiredArtifacts = params.Require
			}
			// The reconciler attaches fix hints; fixes only run with --fix.
			options.Reconciler = &manifest.Reconciler{
				BaseDir: cfg.Logger.BaseDir,
				Version: cfg.Logger.RKLVersion,
				Schemas: options.Catalog,
				Logger:  logger,
			}

			report := health.Run(options)
			fixed := 0
			if params.Fix {
				failed := health.FailedNames(report.Results)
				if fixed = health.ExecuteFixes(context.Background(), report.Results); fixed > 0 {
					report = health.Run(options)
					health.MarkRepaired(report.Results, failed)
				}
			}

			if done, err := params.EmitJSON(stdout, health.Summarize(report.Results, report.ManifestDate, fixed)); done {
				if err != nil {
					return err
				}
				if health.Failed(report.Results) {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}
			return printChecklist(stdout, report, params.Fix, messageWidth())
		},
	}
}

// messageWidth returns the room left for check messages on a terminal
// stdout, or 0 (no truncation) when stdout is not a terminal.
func messageWidth() int {
	file, ok := stdout.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0
	}
	// "[STATUS]" plus separators plus the padded name column.
	return max(width-9-4-nameStyle.GetWidth(), 20)
}

// printChecklist writes one line per check and a verdict. Messages are
// cut to width display cells when width is positive. It returns an
// ExitError when any check failed.
func printChecklist(w io.Writer, report health.Report, fixMode bool, width int) error {
	fixable := 0
	fixed := 0
	for _, result := range report.Results {
		status := fmt.Sprintf("[%-5s]", strings.ToUpper(string(result.Status)))
		if style, ok := statusStyles[result.Status]; ok {
			status = style.Render(status)
		}
		message := result.Message
		if width > 0 {
			message = ansi.Truncate(message, width, "…")
		}
		fmt.Fprintf(w, "%s  %s  %s\n", status, nameStyle.Render(result.Name), message)
		switch {
		case result.Status == health.StatusFail && result.FixHint != "":
			fixable++
		case result.Status == health.StatusFixed:
			fixed++
		}
	}
	fmt.Fprintln(w)

	if health.Failed(report.Results) {
		if !fixMode && fixable > 0 {
			fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixable)
		} else {
			fmt.Fprintln(w, "Health check failed.")
		}
		return &cli.ExitError{Code: 1}
	}
	if fixed > 0 {
		fmt.Fprintf(w, "%d issue(s) repaired.\n", fixed)
		return nil
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}
