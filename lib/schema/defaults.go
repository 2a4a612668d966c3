// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "github.com/resonant-knowledge-lab/rkl/lib/record"

const (
	kindString = record.KindString
	kindNumber = record.KindNumber
	kindBool   = record.KindBool
	kindList   = record.KindList
	kindMap    = record.KindMap
)

// builtin lists the schemas of every artifact type the summarization
// pipeline emits. The Phase-0 types (execution_context, agent_graph,
// boundary_events, governance_ledger) are the stable core; the rest
// were added as the pipeline grew.
var builtin = []Schema{
	{
		Version:        "v1.0",
		ArtifactType:   "execution_context",
		RequiredFields: []string{"session_id", "turn_id", "agent_id", "model_id", "timestamp"},
		FieldTypes: map[string]record.Kind{
			"session_id":      kindString,
			"turn_id":         kindNumber,
			"agent_id":        kindString,
			"model_id":        kindString,
			"timestamp":       kindString,
			"model_rev":       kindString,
			"quant":           kindString,
			"temp":            kindNumber,
			"top_p":           kindNumber,
			"ctx_tokens_used": kindNumber,
			"gen_tokens":      kindNumber,
			"tool_lat_ms":     kindNumber,
			"prompt_id_hash":  kindString,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "agent_graph",
		RequiredFields: []string{"edge_id", "session_id", "from_agent", "to_agent", "msg_type"},
		FieldTypes: map[string]record.Kind{
			"edge_id":        kindString,
			"session_id":     kindString,
			"from_agent":     kindString,
			"to_agent":       kindString,
			"msg_type":       kindString,
			"intent_tag":     kindString,
			"content_hash":   kindString,
			"parent_edge_id": kindString,
			"role_tags":      kindList,
			"latency_ms":     kindNumber,
			"retry_count":    kindNumber,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "reasoning_graph_edge",
		RequiredFields: []string{"edge_id", "session_id", "timestamp", "from_agent", "to_agent", "msg_type", "content_hash"},
		FieldTypes: map[string]record.Kind{
			"edge_id":      kindString,
			"session_id":   kindString,
			"timestamp":    kindString,
			"from_agent":   kindString,
			"to_agent":     kindString,
			"msg_type":     kindString,
			"content_hash": kindString,
			"intent_tag":   kindString,
			"latency_ms":   kindNumber,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "boundary_events",
		RequiredFields: []string{"event_id", "agent_id", "rule_id", "trigger_tag", "action"},
		FieldTypes: map[string]record.Kind{
			"event_id":    kindString,
			"agent_id":    kindString,
			"rule_id":     kindString,
			"trigger_tag": kindString,
			"context_tag": kindString,
			"action":      kindString,
			"reviewer":    kindString,
			"severity":    kindString,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "boundary_event",
		RequiredFields: []string{"event_id", "timestamp", "agent_id", "rule_id", "trigger_tag", "action"},
		FieldTypes: map[string]record.Kind{
			"event_id":    kindString,
			"timestamp":   kindString,
			"agent_id":    kindString,
			"rule_id":     kindString,
			"trigger_tag": kindString,
			"context_tag": kindString,
			"action":      kindString,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "governance_ledger",
		RequiredFields: []string{"publish_id", "timestamp", "artifact_ids", "contributing_agent_ids", "verification_hashes"},
		FieldTypes: map[string]record.Kind{
			"publish_id":               kindString,
			"timestamp":                kindString,
			"artifact_ids":             kindList,
			"contributing_agent_ids":   kindList,
			"verification_hashes":      kindList,
			"human_signoff_id":         kindString,
			"quality_score":            kindNumber,
			"type3_verified":           kindBool,
			"care_compliance_verified": kindBool,
			"raw_data_handling":        kindMap,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "retrieval_provenance",
		RequiredFields: []string{"session_id", "feed_name", "candidate_count", "selected_count"},
		FieldTypes: map[string]record.Kind{
			"session_id":       kindString,
			"feed_name":        kindString,
			"feed_url_hash":    kindString,
			"candidate_count":  kindNumber,
			"selected_count":   kindNumber,
			"candidate_hashes": kindList,
			"selected_hashes":  kindList,
			"cutoff_date":      kindString,
			"category":         kindString,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "system_state",
		RequiredFields: []string{"session_id", "stage"},
		FieldTypes: map[string]record.Kind{
			"session_id":      kindString,
			"stage":           kindString,
			"host":            kindString,
			"platform":        kindString,
			"cpu_percent":     kindNumber,
			"mem_total_bytes": kindNumber,
			"mem_used_bytes":  kindNumber,
			"mem_percent":     kindNumber,
			"pipeline_status": kindString,
			"current_phase":   kindString,
			"gpus":            kindList,
			"disk_io":         kindMap,
			"net_io":          kindMap,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "human_interventions",
		RequiredFields: []string{"session_id", "event_id", "human_role", "intervention_type"},
		FieldTypes: map[string]record.Kind{
			"session_id":        kindString,
			"event_id":          kindString,
			"t":                 kindNumber,
			"human_role":        kindString,
			"intervention_type": kindString,
			"target_turn_id":    kindNumber,
			"delta_metrics":     kindMap,
			"rationale_tag":     kindString,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "quality_trajectories",
		RequiredFields: []string{"session_id", "artifact_id", "score_name", "score"},
		FieldTypes: map[string]record.Kind{
			"session_id":         kindString,
			"artifact_id":        kindString,
			"version":            kindNumber,
			"score_name":         kindString,
			"score":              kindNumber,
			"evaluator_id":       kindString,
			"reason_tag":         kindString,
			"quality_dimensions": kindMap,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "hallucination_matrix",
		RequiredFields: []string{"session_id", "artifact_id", "verdict", "method"},
		FieldTypes: map[string]record.Kind{
			"session_id":    kindString,
			"artifact_id":   kindString,
			"verdict":       kindString,
			"method":        kindString,
			"confidence":    kindNumber,
			"error_type":    kindString,
			"theme_score":   kindNumber,
			"theme_verdict": kindString,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "failure_snapshots",
		RequiredFields: []string{"session_id", "reason"},
		FieldTypes: map[string]record.Kind{
			"session_id":    kindString,
			"reason":        kindString,
			"failed_count":  kindNumber,
			"failed_titles": kindList,
		},
	},
	{
		Version:        "v1.0",
		ArtifactType:   "secure_reasoning_trace",
		RequiredFields: []string{"session_id", "task_id", "turn_id", "steps"},
		FieldTypes: map[string]record.Kind{
			"session_id": kindString,
			"task_id":    kindString,
			"turn_id":    kindNumber,
			"steps":      kindList,
		},
	},
}

// Default returns a new catalog preloaded with the pipeline's artifact
// schemas. Each call returns an independent catalog, so callers may
// Register additional types without affecting others.
func Default() *Catalog {
	catalog := NewCatalog()
	for _, s := range builtin {
		catalog.MustRegister(s)
	}
	return catalog
}
