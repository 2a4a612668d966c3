// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/resonant-knowledge-lab/rkl/lib/batch"
	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/manifest"
	"github.com/resonant-knowledge-lab/rkl/lib/partition"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
	"github.com/resonant-knowledge-lab/rkl/lib/schema"
	"github.com/resonant-knowledge-lab/rkl/lib/sink"
)

var testDay = time.Date(2025, 11, 11, 9, 30, 0, 0, time.UTC)

func executionContext(timestamp string) *record.Record {
	return record.MustOf(
		"session_id", "s-1",
		"turn_id", 1,
		"agent_id", "summarizer",
		"model_id", "gemini-1.5",
		"timestamp", timestamp,
	)
}

// writeTree creates one execution_context partition file with rows
// records and, when withManifest, a matching manifest.
func writeTree(t *testing.T, base string, rows int, withManifest bool) {
	t.Helper()
	records := make([]*record.Record, rows)
	for index := range records {
		records[index] = executionContext("2025-11-11T09:30:00.123456Z")
	}
	if _, err := sink.WritePartition(sink.NDJSON{}, base, "execution_context", testDay, records); err != nil {
		t.Fatalf("WritePartition: %v", err)
	}
	if withManifest {
		reconciler := newReconciler(base)
		if _, err := reconciler.Merge(map[string]batch.Counts{
			"execution_context": {Rows: int64(rows), Writes: 1},
		}); err != nil {
			t.Fatalf("Merge: %v", err)
		}
	}
}

func newReconciler(base string) *manifest.Reconciler {
	return &manifest.Reconciler{
		BaseDir: base,
		Version: "1.0",
		Schemas: schema.Default(),
		Clock:   clock.Fake(testDay),
	}
}

func writeBrief(t *testing.T, directory, name, content string) {
	t.Helper()
	if err := os.MkdirAll(directory, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(directory, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func find(t *testing.T, results []Result, name string) Result {
	t.Helper()
	for _, result := range results {
		if result.Name == name {
			return result
		}
	}
	t.Fatalf("no result named %q in %+v", name, results)
	return Result{}
}

func options(base string) Options {
	return Options{
		BaseDir:           base,
		RequiredArtifacts: []string{"execution_context"},
		MinRows:           1,
	}
}

func TestResultConstructors(t *testing.T) {
	if result := Pass("a", "ok"); result.Status != StatusPass || result.HasFix() {
		t.Errorf("Pass() = %+v", result)
	}
	if result := Fail("a", "bad"); result.Status != StatusFail || result.HasFix() {
		t.Errorf("Fail() = %+v", result)
	}
	fixable := FailWithFix("a", "bad", "repair", func(context.Context) error { return nil })
	if fixable.Status != StatusFail || !fixable.HasFix() || fixable.FixHint != "repair" {
		t.Errorf("FailWithFix() = %+v", fixable)
	}
	if result := Warn("a", "hmm"); result.Status != StatusWarn {
		t.Errorf("Warn() = %+v", result)
	}
	if result := Skip("a", "later"); result.Status != StatusSkip {
		t.Errorf("Skip() = %+v", result)
	}
}

func TestExecuteFixes(t *testing.T) {
	results := []Result{
		Pass("fine", "ok"),
		FailWithFix("repairable", "broken", "repair", func(context.Context) error { return nil }),
		FailWithFix("stubborn", "broken", "repair", func(context.Context) error { return errors.New("disk full") }),
		Fail("hopeless", "broken"),
	}
	if fixed := ExecuteFixes(context.Background(), results); fixed != 1 {
		t.Errorf("ExecuteFixes() = %d, want 1", fixed)
	}
	if results[1].Status != StatusFixed {
		t.Errorf("repairable status = %s, want fixed", results[1].Status)
	}
	if results[2].Status != StatusFail || !strings.Contains(results[2].Message, "fix failed: disk full") {
		t.Errorf("stubborn = %+v", results[2])
	}
	if !Failed(results) {
		t.Error("Failed() = false with failing results")
	}
}

func TestRunHealthyTree(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, 3, true)
	briefs := filepath.Join(t.TempDir(), "briefs")
	writeBrief(t, briefs, "2025-11-10_articles.json", `{"session_id": "old"}`)
	writeBrief(t, briefs, "2025-11-11_articles.json", `{"metadata": {"session_id": "s-1"}}`)

	opts := options(base)
	opts.BriefsDir = briefs
	report := Run(opts)

	if Failed(report.Results) {
		t.Fatalf("healthy tree failed: %+v", report.Results)
	}
	if report.ManifestDate != "2025-11-11" {
		t.Errorf("ManifestDate = %q", report.ManifestDate)
	}
	if rows := find(t, report.Results, RowsCheck("execution_context")); rows.Message != "3 rows" {
		t.Errorf("rows message = %q", rows.Message)
	}
	fields := find(t, report.Results, SchemaCheck("execution_context"))
	if fields.Status != StatusPass || !strings.Contains(fields.Message, "UTC timestamp valid") {
		t.Errorf("schema result = %+v", fields)
	}
	brief := find(t, report.Results, CheckBriefs)
	if brief.Status != StatusPass || !strings.Contains(brief.Message, "s-1") {
		t.Errorf("brief result = %+v, want newest file's metadata session id", brief)
	}

	summary := Summarize(report.Results, report.ManifestDate, 0)
	if !summary.OK || summary.Manifest != "2025-11-11" {
		t.Errorf("Summarize() = %+v", summary)
	}
}

func TestRunMissingBaseDir(t *testing.T) {
	report := Run(options(filepath.Join(t.TempDir(), "absent")))
	if len(report.Results) != 1 || report.Results[0].Name != CheckBaseDir || report.Results[0].Status != StatusFail {
		t.Errorf("results = %+v, want a single base directory failure", report.Results)
	}
}

func TestRunRowsBelowMinimum(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, 2, true)

	opts := options(base)
	opts.MinRows = 5
	opts.RequiredArtifacts = []string{"execution_context", "governance_ledger"}
	report := Run(opts)

	if rows := find(t, report.Results, RowsCheck("execution_context")); rows.Status != StatusFail {
		t.Errorf("execution_context rows = %+v, want fail", rows)
	}
	ledger := find(t, report.Results, RowsCheck("governance_ledger"))
	if ledger.Status != StatusFail || ledger.Message != "0 rows (minimum 5 required)" {
		t.Errorf("governance_ledger rows = %+v", ledger)
	}
	if files := find(t, report.Results, SchemaCheck("governance_ledger")); files.Status != StatusFail {
		t.Errorf("governance_ledger schema = %+v, want fail for missing files", files)
	}
}

func TestRunMissingManifestIsFixable(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, 4, false)

	opts := options(base)
	report := Run(opts)
	if result := find(t, report.Results, CheckManifest); result.Status != StatusFail || result.HasFix() {
		t.Fatalf("manifest without reconciler = %+v, want unfixable failure", result)
	}
	if result := find(t, report.Results, RowsCheck("execution_context")); result.Status != StatusSkip {
		t.Errorf("rows without manifest = %+v, want skip", result)
	}

	opts.Reconciler = newReconciler(base)
	report = Run(opts)
	failed := FailedNames(report.Results)
	if fixed := ExecuteFixes(context.Background(), report.Results); fixed != 1 {
		t.Fatalf("ExecuteFixes() = %d, want 1", fixed)
	}

	rerun := Run(opts)
	MarkRepaired(rerun.Results, failed)
	if Failed(rerun.Results) {
		t.Fatalf("rerun after fix failed: %+v", rerun.Results)
	}
	if result := find(t, rerun.Results, CheckManifest); result.Status != StatusFixed {
		t.Errorf("manifest after fix = %+v, want fixed", result)
	}
	daily, err := manifest.Read(base, "2025-11-11")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if daily.CorrectedBy != manifest.RebuildTool || daily.Artifacts["execution_context"].Rows != 4 {
		t.Errorf("rebuilt manifest = %+v", daily)
	}
}

func TestRunSchemaProblems(t *testing.T) {
	base := t.TempDir()
	incomplete := record.MustOf("session_id", "s-1", "timestamp", "2025-11-11T09:30:00Z")
	if _, err := sink.WritePartition(sink.Columnar{}, base, "execution_context", testDay, []*record.Record{incomplete}); err != nil {
		t.Fatal(err)
	}

	report := Run(options(base))
	result := find(t, report.Results, SchemaCheck("execution_context"))
	if result.Status != StatusFail || !strings.Contains(result.Message, "turn_id, agent_id, model_id") {
		t.Errorf("schema result = %+v", result)
	}
}

func TestRunTimestampWarning(t *testing.T) {
	base := t.TempDir()
	later := testDay.Add(time.Minute)
	if _, err := sink.WritePartition(sink.NDJSON{}, base, "execution_context", testDay,
		[]*record.Record{executionContext("2025-11-11T09:30:00Z")}); err != nil {
		t.Fatal(err)
	}
	// Only the newest file is inspected.
	if _, err := sink.WritePartition(sink.NDJSON{}, base, "execution_context", later,
		[]*record.Record{executionContext("2025-11-11 09:31:00+00:00")}); err != nil {
		t.Fatal(err)
	}

	result := find(t, Run(options(base)).Results, SchemaCheck("execution_context"))
	if result.Status != StatusWarn || !strings.Contains(result.Message, "2025-11-11 09:31:00+00:00") {
		t.Errorf("schema result = %+v, want timestamp warning for the newest file", result)
	}
}

func TestRunUnknownSchemaWarns(t *testing.T) {
	base := t.TempDir()
	if _, err := sink.WritePartition(sink.NDJSON{}, base, "custom_metric", testDay,
		[]*record.Record{record.MustOf("value", 1)}); err != nil {
		t.Fatal(err)
	}
	opts := options(base)
	opts.RequiredArtifacts = []string{"custom_metric"}
	result := find(t, Run(opts).Results, SchemaCheck("custom_metric"))
	if result.Status != StatusWarn || !strings.HasPrefix(result.Message, schema.NoSchemaNote) {
		t.Errorf("schema result = %+v", result)
	}
}

func TestCheckBriefs(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		status Status
	}{
		{"root session id", map[string]string{"a_articles.json": `{"session_id": "s-9"}`}, StatusPass},
		{"metadata session id", map[string]string{"a_articles.json": `{"metadata": {"session_id": "s-9"}}`}, StatusPass},
		{"missing session id", map[string]string{"a_articles.json": `{"articles": []}`}, StatusFail},
		{"malformed", map[string]string{"a_articles.json": `{`}, StatusFail},
		{"no article files", map[string]string{"notes.txt": "x"}, StatusWarn},
		{"newest wins", map[string]string{
			"2025-11-10_articles.json": `{"session_id": "s-1"}`,
			"2025-11-11_articles.json": `{}`,
		}, StatusFail},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			directory := t.TempDir()
			for name, content := range test.files {
				writeBrief(t, directory, name, content)
			}
			if result := checkBriefs(directory); result.Status != test.status {
				t.Errorf("checkBriefs() = %+v, want %s", result, test.status)
			}
		})
	}

	if result := checkBriefs(filepath.Join(t.TempDir(), "absent")); result.Status != StatusWarn {
		t.Errorf("missing directory = %+v, want warn", result)
	}
	if result := checkBriefs(""); result.Status != StatusSkip {
		t.Errorf("unconfigured = %+v, want skip", result)
	}
}

func TestManifestFixTargetsNewestPartitionDate(t *testing.T) {
	base := t.TempDir()
	for _, day := range []time.Time{testDay.AddDate(0, 0, -1), testDay} {
		if _, err := sink.WritePartition(sink.NDJSON{}, base, "execution_context", day,
			[]*record.Record{executionContext("2025-11-11T09:30:00Z")}); err != nil {
			t.Fatal(err)
		}
	}
	opts := options(base)
	opts.Reconciler = newReconciler(base)
	report := Run(opts)
	result := find(t, report.Results, CheckManifest)
	if !strings.Contains(result.FixHint, "2025-11-11") {
		t.Errorf("fix hint = %q, want newest date", result.FixHint)
	}
	ExecuteFixes(context.Background(), report.Results)
	if _, err := os.Stat(partition.ManifestPath(base, testDay)); err != nil {
		t.Errorf("manifest for newest date not written: %v", err)
	}
}
