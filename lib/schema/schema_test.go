// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

func TestDefaultRegistersPipelineTypes(t *testing.T) {
	catalog := Default()
	for _, artifactType := range []string{
		"execution_context",
		"agent_graph",
		"boundary_events",
		"governance_ledger",
		"reasoning_graph_edge",
		"boundary_event",
		"retrieval_provenance",
		"system_state",
		"human_interventions",
		"quality_trajectories",
		"hallucination_matrix",
		"failure_snapshots",
		"secure_reasoning_trace",
	} {
		s, ok := catalog.Lookup(artifactType)
		if !ok {
			t.Errorf("missing schema %q", artifactType)
			continue
		}
		if !strings.HasPrefix(s.Version, "v") {
			t.Errorf("%s: version %q does not start with v", artifactType, s.Version)
		}
		if s.ArtifactType != artifactType {
			t.Errorf("%s: ArtifactType = %q", artifactType, s.ArtifactType)
		}
		if len(s.RequiredFields) == 0 {
			t.Errorf("%s: no required fields", artifactType)
		}
	}
}

func TestExecutionContextRequiredFieldsStable(t *testing.T) {
	s, ok := Default().Lookup("execution_context")
	if !ok {
		t.Fatal("execution_context not registered")
	}
	got := slices.Sorted(slices.Values(s.RequiredFields))
	want := []string{"agent_id", "model_id", "session_id", "timestamp", "turn_id"}
	if !slices.Equal(got, want) {
		t.Fatalf("required fields = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	catalog := Default()

	tests := []struct {
		name         string
		artifactType string
		rec          *record.Record
		wantOK       bool
		wantProblems []string
	}{
		{
			name:         "complete record",
			artifactType: "execution_context",
			rec: record.MustOf(
				"session_id", "test-session",
				"turn_id", 1,
				"agent_id", "test_agent",
				"model_id", "llama3.2:1b",
				"timestamp", "2025-11-11T09:00:00Z",
			),
			wantOK: true,
		},
		{
			name:         "missing fields in declaration order",
			artifactType: "execution_context",
			rec:          record.MustOf("session_id", "s", "agent_id", "a"),
			wantOK:       false,
			wantProblems: []string{
				"missing required field: turn_id",
				"missing required field: model_id",
				"missing required field: timestamp",
			},
		},
		{
			name:         "null satisfies presence",
			artifactType: "failure_snapshots",
			rec:          record.MustOf("session_id", nil, "reason", "empty_summaries"),
			wantOK:       true,
		},
		{
			name:         "unknown type is valid with a note",
			artifactType: "not_a_type",
			rec:          record.New(),
			wantOK:       true,
			wantProblems: []string{NoSchemaNote},
		},
		{
			name:         "declared types are not enforced",
			artifactType: "failure_snapshots",
			rec:          record.MustOf("session_id", 12, "reason", []any{"x"}),
			wantOK:       true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, problems := catalog.Validate(test.artifactType, test.rec)
			if ok != test.wantOK {
				t.Errorf("ok = %v, want %v (problems: %v)", ok, test.wantOK, problems)
			}
			if !slices.Equal(problems, test.wantProblems) {
				t.Errorf("problems = %q, want %q", problems, test.wantProblems)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	catalog := NewCatalog()
	custom := Schema{
		Version:        "v2.1",
		ArtifactType:   "custom",
		RequiredFields: []string{"id"},
		FieldTypes:     map[string]record.Kind{"id": record.KindString},
	}
	if err := catalog.Register(custom); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := catalog.Register(custom); !errors.Is(err, ErrDuplicateSchema) {
		t.Fatalf("second Register error = %v, want ErrDuplicateSchema", err)
	}

	// The catalog holds its own copy.
	custom.RequiredFields[0] = "changed"
	stored, _ := catalog.Lookup("custom")
	if stored.RequiredFields[0] != "id" {
		t.Fatalf("catalog shares caller's slice: %v", stored.RequiredFields)
	}

	if got := catalog.SchemaVersion("custom"); got != "v2.1" {
		t.Errorf("SchemaVersion(custom) = %q, want v2.1", got)
	}
	if got := catalog.SchemaVersion("other"); got != DefaultVersion {
		t.Errorf("SchemaVersion(other) = %q, want %q", got, DefaultVersion)
	}
	if got := catalog.Types(); !slices.Equal(got, []string{"custom"}) {
		t.Errorf("Types() = %v", got)
	}
}

func TestRegisterRejectsMalformed(t *testing.T) {
	catalog := NewCatalog()
	for _, s := range []Schema{
		{Version: "v1.0"},
		{Version: "1.0", ArtifactType: "x"},
		{Version: "v1.0", ArtifactType: "x", RequiredFields: []string{""}},
		{Version: "v1.0", ArtifactType: "x", RequiredFields: []string{"a", "a"}},
	} {
		if err := catalog.Register(s); err == nil {
			t.Errorf("Register(%+v) succeeded, want error", s)
		}
	}
}

func TestZeroCatalog(t *testing.T) {
	var catalog Catalog
	if err := catalog.Register(Schema{Version: "v1", ArtifactType: "t", RequiredFields: []string{"a"}}); err != nil {
		t.Fatalf("Register on zero catalog: %v", err)
	}
	ok, _ := catalog.Validate("t", record.MustOf("a", 1))
	if !ok {
		t.Fatal("Validate failed on zero-value catalog")
	}
}
