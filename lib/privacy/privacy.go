// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package privacy

import (
	"slices"
	"strings"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// SensitiveFields are the raw-text field names that never leave the
// producing machine.
var SensitiveFields = []string{
	"prompt_text",
	"input_text",
	"output_text",
	"response_text",
	"content",
	"raw_text",
	"article_text",
	"summary_text",
}

// HashSuffix marks fingerprint fields.
const HashSuffix = "_hash"

func isSensitive(field string) bool {
	return slices.Contains(SensitiveFields, field)
}

// SanitizeForResearch returns a copy of rec in which every sensitive
// field is replaced by "<field>_hash" holding the SHA-256 fingerprint
// of its text. Non-string sensitive values are fingerprinted by their
// JSON encoding. Other fields are kept unchanged and in order.
func SanitizeForResearch(rec *record.Record) *record.Record {
	sanitized := record.New()
	rec.Range(func(key string, v record.Value) bool {
		if !isSensitive(key) {
			sanitized.SetValue(key, v)
			return true
		}
		text, ok := v.AsString()
		if !ok {
			encoded, _ := v.MarshalJSON()
			text = string(encoded)
		}
		sanitized.SetValue(key+HashSuffix, record.String(SHA256Text(text)))
		return true
	})
	return sanitized.Clone()
}

// AnonymizeForPublic returns a copy of rec without sensitive fields
// and without fingerprint fields.
func AnonymizeForPublic(rec *record.Record) *record.Record {
	public := record.New()
	rec.Range(func(key string, v record.Value) bool {
		if isSensitive(key) || strings.HasSuffix(key, HashSuffix) {
			return true
		}
		public.SetValue(key, v)
		return true
	})
	return public.Clone()
}
