// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/resonant-knowledge-lab/rkl/lib/manifest"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
	"github.com/resonant-knowledge-lab/rkl/lib/schema"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
)

// Check names shared by Run and its callers.
const (
	CheckBaseDir  = "base directory"
	CheckManifest = "manifest"
	CheckBriefs   = "brief session id"
)

// briefPattern matches the pipeline's per-run article outputs.
const briefPattern = "*_articles.json"

// Options configures Run.
type Options struct {
	// BaseDir is the telemetry tree root.
	BaseDir string

	// BriefsDir holds *_articles.json outputs. Empty skips the
	// session id check.
	BriefsDir string

	// RequiredArtifacts are checked for rows and schema fields.
	RequiredArtifacts []string

	// MinRows is the per-artifact row floor in the latest manifest.
	MinRows int64

	// Catalog supplies required fields. Nil uses schema.Default().
	Catalog *schema.Catalog

	// Reconciler, when set, makes a missing or unreadable manifest
	// fixable by rebuilding it from partition files.
	Reconciler *manifest.Reconciler
}

// Report is the outcome of Run.
type Report struct {
	// ManifestDate is the date of the manifest the row checks read,
	// empty when none was usable.
	ManifestDate string

	Results []Result
}

// RowsCheck is the name of the row-count check for artifactType.
func RowsCheck(artifactType string) string { return "rows: " + artifactType }

// SchemaCheck is the name of the field check for artifactType.
func SchemaCheck(artifactType string) string { return "schema: " + artifactType }

// Run executes every check. It never returns early on a failed check
// except when the base directory itself is missing.
func Run(opts Options) Report {
	var report Report
	add := func(result Result) { report.Results = append(report.Results, result) }

	info, err := os.Stat(opts.BaseDir)
	if err != nil || !info.IsDir() {
		add(Fail(CheckBaseDir, fmt.Sprintf("%s not found; the pipeline has not logged any telemetry yet", opts.BaseDir)))
		return report
	}
	add(Pass(CheckBaseDir, opts.BaseDir))

	files, err := partition.Scan(opts.BaseDir, partition.Filter{})
	if err != nil {
		add(Fail("partition scan", err.Error()))
		return report
	}

	daily, result := checkManifest(opts, files)
	add(result)
	if daily != nil {
		report.ManifestDate = daily.Date
	}

	for _, artifactType := range opts.RequiredArtifacts {
		add(checkRows(daily, artifactType, opts.MinRows))
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = schema.Default()
	}
	for _, artifactType := range opts.RequiredArtifacts {
		add(checkSchema(catalog, files, artifactType))
	}

	add(checkBriefs(opts.BriefsDir))
	return report
}

// checkManifest loads the newest manifest. When none is usable and
// partition files exist, the failure carries a rebuild fix.
func checkManifest(opts Options, files []partition.File) (*manifest.Daily, Result) {
	date, found, err := manifest.Latest(opts.BaseDir)
	if err != nil {
		return nil, Fail(CheckManifest, err.Error())
	}

	if !found {
		message := fmt.Sprintf("no manifest files in %s", partition.ManifestDir(opts.BaseDir))
		return nil, rebuildable(opts, files, message)
	}

	daily, err := manifest.Read(opts.BaseDir, date)
	if err != nil {
		return nil, rebuildable(opts, files, fmt.Sprintf("manifest %s unreadable: %v", date, err))
	}
	return daily, Pass(CheckManifest, fmt.Sprintf("found %s.json (%d artifact types)", date, len(daily.Artifacts)))
}

// rebuildable returns a manifest failure, fixable by rebuilding the
// newest partition date when a reconciler is configured.
func rebuildable(opts Options, files []partition.File, message string) Result {
	if opts.Reconciler == nil || len(files) == 0 {
		return Fail(CheckManifest, message)
	}
	newest := files[0].Date
	for _, file := range files[1:] {
		if file.Date.After(newest) {
			newest = file.Date
		}
	}
	date := newest.Format(partition.DateLayout)
	reconciler := opts.Reconciler
	return FailWithFix(CheckManifest, message,
		fmt.Sprintf("rebuild the %s manifest from partition files", date),
		func(context.Context) error {
			_, _, err := reconciler.Fix(date)
			return err
		})
}

func checkRows(daily *manifest.Daily, artifactType string, minRows int64) Result {
	name := RowsCheck(artifactType)
	if daily == nil {
		return Skip(name, "no manifest")
	}
	rows := daily.Artifacts[artifactType].Rows
	if rows < minRows {
		return Fail(name, fmt.Sprintf("%d rows (minimum %d required)", rows, minRows))
	}
	return Pass(name, fmt.Sprintf("%d rows", rows))
}

// checkSchema spot-checks the first record of the newest partition
// file of artifactType.
func checkSchema(catalog *schema.Catalog, files []partition.File, artifactType string) Result {
	name := SchemaCheck(artifactType)
	file, found := partition.Latest(files, artifactType)
	if !found {
		return Fail(name, "no partition files found")
	}
	records, err := sink.ReadFile(file.Path)
	if err != nil {
		return Fail(name, err.Error())
	}
	if len(records) == 0 {
		return Fail(name, fmt.Sprintf("%s is empty", filepath.Base(file.Path)))
	}
	first := records[0]

	definition, known := catalog.Lookup(artifactType)
	if !known {
		return Warn(name, fmt.Sprintf("%s; %d fields in %s", schema.NoSchemaNote, first.Len(), filepath.Base(file.Path)))
	}
	if missing := definition.Missing(first); len(missing) > 0 {
		return Fail(name, fmt.Sprintf("missing required fields: %s (found: %s)",
			strings.Join(missing, ", "), strings.Join(first.Keys(), ", ")))
	}

	message := fmt.Sprintf("required fields present in %s (%d fields)", filepath.Base(file.Path), first.Len())
	if value, ok := first.Get("timestamp"); ok {
		timestamp, valid := utcTimestamp(value)
		if !valid {
			return Warn(name, fmt.Sprintf("%s; timestamp %s is not UTC ISO-8601 with a Z suffix", message, timestamp))
		}
		message += ", UTC timestamp valid"
	}
	return Pass(name, message)
}

// utcTimestamp reports whether value is an ISO-8601 string in UTC with
// a Z suffix. The first return is the value as text, for messages.
func utcTimestamp(value record.Value) (string, bool) {
	text, ok := value.AsString()
	if !ok {
		return fmt.Sprint(value.Interface()), false
	}
	if !strings.HasSuffix(text, "Z") {
		return text, false
	}
	_, err := time.Parse(time.RFC3339Nano, text)
	return text, err == nil
}

// checkBriefs verifies that the newest brief output carries a
// session_id at its root or under metadata.
func checkBriefs(directory string) Result {
	if directory == "" {
		return Skip(CheckBriefs, "no briefs directory configured")
	}
	if _, err := os.Stat(directory); errors.Is(err, fs.ErrNotExist) {
		return Warn(CheckBriefs, fmt.Sprintf("%s not found; briefs may not have been generated yet", directory))
	}
	matches, err := filepath.Glob(filepath.Join(directory, briefPattern))
	if err != nil {
		return Fail(CheckBriefs, err.Error())
	}
	if len(matches) == 0 {
		return Warn(CheckBriefs, fmt.Sprintf("no %s files in %s", briefPattern, directory))
	}
	slices.Sort(matches)
	newest := matches[len(matches)-1]

	data, err := os.ReadFile(newest)
	if err != nil {
		return Fail(CheckBriefs, err.Error())
	}
	var brief struct {
		SessionID any `json:"session_id"`
		Metadata  struct {
			SessionID any `json:"session_id"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &brief); err != nil {
		return Fail(CheckBriefs, fmt.Sprintf("parsing %s: %v", filepath.Base(newest), err))
	}
	sessionID := brief.SessionID
	if sessionID == nil {
		sessionID = brief.Metadata.SessionID
	}
	if sessionID == nil {
		return Fail(CheckBriefs, fmt.Sprintf("%s has no session_id for joining with telemetry", filepath.Base(newest)))
	}
	return Pass(CheckBriefs, fmt.Sprintf("%s: session_id %v", filepath.Base(newest), sessionID))
}

// FailedNames returns the names of failing results.
func FailedNames(results []Result) map[string]bool {
	names := make(map[string]bool)
	for _, result := range results {
		if result.Status == StatusFail {
			names[result.Name] = true
		}
	}
	return names
}

// MarkRepaired marks results that now pass but failed in an earlier
// run as fixed. Call after re-running checks following ExecuteFixes.
func MarkRepaired(results []Result, previouslyFailed map[string]bool) {
	for i := range results {
		if results[i].Status == StatusPass && previouslyFailed[results[i].Name] {
			results[i].Status = StatusFixed
		}
	}
}
