// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/resonant-knowledge-lab/rkl/cmd/rkl/cli"
	"github.com/resonant-knowledge-lab/rkl/lib/batch"
	"github.com/resonant-knowledge-lab/rkl/lib/privacy"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
	"github.com/resonant-knowledge-lab/rkl/lib/structlog"
)

// routeField names the per-record artifact type used when --type is
// not given. It is removed before the record is logged.
const routeField = "artifact_type"

// maxRecordLine bounds one NDJSON input line.
const maxRecordLine = 16 << 20

type logParams struct {
	cli.ConfigFlags
	cli.JSONOutput
	Type     string `flag:"type,t" desc:"artifact type for every record (default: each record's artifact_type field)"`
	Session  string `flag:"session" desc:"session_id for records without one (default: a new UUID)"`
	Input    string `flag:"input,i" desc:"read records from this file instead of stdin"`
	Force    bool   `flag:"force" desc:"write every record immediately instead of batching"`
	Sanitize bool   `flag:"sanitize" desc:"replace raw-text fields (prompt_text, content, ...) with SHA-256 fingerprints"`
}

// logResult is the --json output of rkl log.
type logResult struct {
	SessionID string                  `json:"session_id"`
	Logged    int64                   `json:"logged"`
	Manifest  string                  `json:"manifest,omitempty"`
	Artifacts map[string]batch.Counts `json:"artifacts"`
}

func logCommand() *cli.Command {
	var params logParams

	return &cli.Command{
		Name:    "log",
		Summary: "Log NDJSON records from stdin",
		Description: `Read one JSON object per line and log each as a telemetry record.

Records are enriched, validated, batched, and written exactly as an
embedded logger would write them; on end of input or on SIGINT/SIGTERM
the remaining batches are flushed and the daily manifest is merged.

Records without a session_id get the --session value, which defaults
to a fresh UUID shared by the whole run. With --sanitize, raw-text
fields are replaced by "<field>_hash" fingerprints before logging.`,
		Usage: "rkl log [--type <artifact_type>] [flags] < records.ndjson",
		Examples: []cli.Example{
			{
				Description: "Log execution context records from a pipeline step",
				Command:     "pipeline-step | rkl log --type execution_context",
			},
			{
				Description: "Route mixed records by their artifact_type field",
				Command:     "rkl log --input events.ndjson --base-dir ./data/research",
			},
			{
				Description: "Fingerprint prompt and response text before it is stored",
				Command:     "rkl log --type execution_context --sanitize < turns.ndjson",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("log", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := params.Load()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(params.Verbose).With("command", "log")

			input := stdin
			if params.Input != "" {
				file, err := os.Open(params.Input)
				if err != nil {
					return err
				}
				defer file.Close()
				input = file
			}

			session := params.Session
			if session == "" {
				session = uuid.NewString()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result := logResult{SessionID: session}
			var telemetry *structlog.Logger
			err = structlog.Run(cfg.Logger, func(opened *structlog.Logger) error {
				telemetry = opened
				logged, err := logRecords(ctx, opened, input, recordSettings{
					artifactType: params.Type,
					session:      session,
					force:        params.Force,
					sanitize:     params.Sanitize,
				})
				result.Logged = logged
				return err
			}, structlog.WithLogger(logger))
			if err != nil {
				return err
			}
			// Stats after Run include the final flush.
			result.Artifacts = telemetry.Stats()
			if cfg.Logger.AutoManifest {
				result.Manifest = telemetry.ManifestPath()
			}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "logged %s records (session %s)\n", humanize.Comma(result.Logged), session)
			types := make([]string, 0, len(result.Artifacts))
			for artifactType := range result.Artifacts {
				types = append(types, artifactType)
			}
			slices.Sort(types)
			for _, artifactType := range types {
				counts := result.Artifacts[artifactType]
				fmt.Fprintf(stdout, "  %-24s %s rows in %d writes\n", artifactType, humanize.Comma(counts.Rows), counts.Writes)
			}
			return nil
		},
	}
}

// recordSettings control how logRecords treats each input record.
type recordSettings struct {
	artifactType string
	session      string
	force        bool
	sanitize     bool
}

// logRecords reads NDJSON lines from input and logs them until end of
// input or cancellation. Reading happens on a separate goroutine so a
// signal ends the run even while stdin blocks. It returns the number
// of records submitted.
func logRecords(ctx context.Context, telemetry *structlog.Logger, input io.Reader, settings recordSettings) (int64, error) {
	type line struct {
		number int
		data   []byte
		err    error
	}
	lines := make(chan line)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)
		number := 0
		for scanner.Scan() {
			number++
			data := slices.Clone(scanner.Bytes())
			select {
			case lines <- line{number: number, data: data}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- line{number: number + 1, err: err}:
			case <-done:
			}
		}
	}()

	var options []structlog.LogOption
	if settings.force {
		options = append(options, structlog.ForceWrite())
	}

	var logged int64
	for {
		select {
		case <-ctx.Done():
			return logged, nil
		case next, ok := <-lines:
			if !ok {
				return logged, nil
			}
			if next.err != nil {
				return logged, fmt.Errorf("reading input: %w", next.err)
			}
			if len(next.data) == 0 {
				continue
			}
			rec, err := record.Parse(next.data)
			if err != nil {
				return logged, fmt.Errorf("line %d: %w", next.number, err)
			}
			target, err := routeRecord(rec, settings.artifactType)
			if err != nil {
				return logged, fmt.Errorf("line %d: %w", next.number, err)
			}
			rec.SetDefault("session_id", record.String(settings.session))
			if settings.sanitize {
				rec = privacy.SanitizeForResearch(rec)
			}
			if err := telemetry.Log(target, rec, options...); err != nil {
				if errors.Is(err, structlog.ErrClosed) {
					return logged, err
				}
				return logged, fmt.Errorf("line %d: %w", next.number, err)
			}
			logged++
		}
	}
}

// routeRecord returns the artifact type for rec: the fixed type when
// set, otherwise the record's artifact_type field, which is removed.
func routeRecord(rec *record.Record, fixed string) (string, error) {
	if fixed != "" {
		return fixed, nil
	}
	value, ok := rec.Get(routeField)
	if !ok {
		return "", fmt.Errorf("no --type given and record has no %s field", routeField)
	}
	artifactType, ok := value.AsString()
	if !ok || artifactType == "" {
		return "", fmt.Errorf("%s must be a non-empty string", routeField)
	}
	rec.Delete(routeField)
	return artifactType, nil
}
