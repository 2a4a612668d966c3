// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package enrich stamps accepted telemetry records with the logger's
// standard metadata fields.
package enrich

import (
	"time"

	"github.com/resonant-knowledge-lab/rkl/lib/clock"
	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// Field names added by Enrich.
const (
	FieldVersion        = "rkl_version"
	FieldTimestamp      = "timestamp"
	FieldType3Compliant = "type3_compliant"
)

// TimestampLayout is ISO-8601 UTC with microsecond precision and a
// literal Z suffix, e.g. 2025-11-11T09:00:00.123456Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in TimestampLayout after converting to UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Enricher adds metadata to records. It holds no mutable state and is
// safe for concurrent use.
type Enricher struct {
	Version          string
	Type3Enforcement bool
	Clock            clock.Clock
}

// Enrich returns a deep copy of rec with rkl_version, timestamp and,
// when Type III enforcement is on, type3_compliant added. Fields the
// caller already set are never overwritten. rec itself is not
// modified.
func (e *Enricher) Enrich(rec *record.Record) *record.Record {
	enriched := rec.Clone()
	if enriched == nil {
		enriched = record.New()
	}
	enriched.SetDefault(FieldVersion, record.String(e.Version))
	if !enriched.Has(FieldTimestamp) {
		enriched.SetValue(FieldTimestamp, record.String(FormatTimestamp(e.now())))
	}
	if e.Type3Enforcement {
		enriched.SetDefault(FieldType3Compliant, record.Bool(true))
	}
	return enriched
}

func (e *Enricher) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}
