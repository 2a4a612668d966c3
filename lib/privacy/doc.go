// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

// Package privacy fingerprints content and strips raw text from
// telemetry records.
//
// Telemetry must never carry article text, prompts, or model output.
// Producers reference such content by fingerprint ("sha256:" followed
// by 64 hex digits), which lets records from different artifact types
// be joined on the same content without exposing it.
//
// Two record transforms cover the publication tiers:
//
//   - [SanitizeForResearch] replaces each sensitive text field with a
//     "<field>_hash" fingerprint and keeps everything else.
//   - [AnonymizeForPublic] removes sensitive fields and every
//     fingerprint field, leaving only structural telemetry.
package privacy
