// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"strings"
	"testing"
	"time"

	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

func stringField(t *testing.T, rec *record.Record, key string) string {
	t.Helper()
	v, ok := rec.Get(key)
	if !ok {
		t.Fatalf("field %q missing from %s", key, rec)
	}
	s, ok := v.AsString()
	if !ok {
		t.Fatalf("field %q is %s, want string", key, v.Kind())
	}
	return s
}

func TestEnrichAddsMetadata(t *testing.T) {
	location := time.FixedZone("UTC+2", 2*60*60)
	fake := clock.Fake(time.Date(2025, 11, 11, 11, 0, 0, 123456789, location))
	enricher := &Enricher{Version: "1.0", Type3Enforcement: true, Clock: fake}

	input := record.MustOf("session_id", "s1")
	enriched := enricher.Enrich(input)

	if got := stringField(t, enriched, FieldVersion); got != "1.0" {
		t.Errorf("rkl_version = %q, want 1.0", got)
	}
	if got := stringField(t, enriched, FieldTimestamp); got != "2025-11-11T09:00:00.123456Z" {
		t.Errorf("timestamp = %q, want 2025-11-11T09:00:00.123456Z", got)
	}
	flag, _ := enriched.Get(FieldType3Compliant)
	if b, ok := flag.AsBool(); !ok || !b {
		t.Errorf("type3_compliant = %v, want true", flag.Interface())
	}

	if input.Len() != 1 {
		t.Fatalf("input record mutated: %s", input)
	}
	if got := strings.Join(enriched.Keys(), ","); got != "session_id,rkl_version,timestamp,type3_compliant" {
		t.Errorf("key order = %q", got)
	}
}

func TestEnrichPreservesCallerValues(t *testing.T) {
	enricher := &Enricher{Version: "1.0", Type3Enforcement: true, Clock: clock.Fake(time.Unix(0, 0))}
	input := record.MustOf(
		"rkl_version", "0.9",
		"timestamp", "2025-11-11T09:00:00Z",
		"type3_compliant", false,
	)
	enriched := enricher.Enrich(input)

	if got := stringField(t, enriched, FieldVersion); got != "0.9" {
		t.Errorf("rkl_version overwritten: %q", got)
	}
	if got := stringField(t, enriched, FieldTimestamp); got != "2025-11-11T09:00:00Z" {
		t.Errorf("timestamp overwritten: %q", got)
	}
	flag, _ := enriched.Get(FieldType3Compliant)
	if b, _ := flag.AsBool(); b {
		t.Error("type3_compliant overwritten")
	}
}

func TestEnrichWithoutType3(t *testing.T) {
	enricher := &Enricher{Version: "1.0", Clock: clock.Fake(time.Unix(0, 0))}
	enriched := enricher.Enrich(record.New())
	if enriched.Has(FieldType3Compliant) {
		t.Fatal("type3_compliant added with enforcement off")
	}
	if got := stringField(t, enriched, FieldTimestamp); got != "1970-01-01T00:00:00.000000Z" {
		t.Errorf("timestamp = %q", got)
	}
}

func TestEnrichNilRecord(t *testing.T) {
	enricher := &Enricher{Version: "1.0"}
	enriched := enricher.Enrich(nil)
	if !strings.HasSuffix(stringField(t, enriched, FieldTimestamp), "Z") {
		t.Fatal("timestamp missing Z suffix")
	}
}
