// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package privacy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

func TestSHA256Text(t *testing.T) {
	first := SHA256Text("This is sensitive content")
	if first != SHA256Text("This is sensitive content") {
		t.Fatal("hashing not deterministic")
	}
	if !strings.HasPrefix(first, "sha256:") || len(first) != 71 {
		t.Fatalf("fingerprint %q: want sha256: prefix and 71 characters", first)
	}
	// Known vector: SHA-256 of the empty string.
	if got := SHA256Text(""); got != "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("SHA256Text(\"\") = %s", got)
	}
}

func TestSHA256DictIgnoresOrder(t *testing.T) {
	a, err := SHA256Record(record.MustOf("key1", "value1", "key2", "value2"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := SHA256Dict(map[string]any{"key2": "value2", "key1": "value1"})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("order changed fingerprint: %s vs %s", a, b)
	}
	c, _ := SHA256Dict(map[string]any{"key1": "value1"})
	if a == c {
		t.Fatal("different content produced the same fingerprint")
	}
}

func TestSHA256File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("file body"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := SHA256File(path)
	if err != nil {
		t.Fatalf("SHA256File: %v", err)
	}
	if got != SHA256Text("file body") {
		t.Fatalf("file fingerprint %s differs from text fingerprint", got)
	}
	if _, err := SHA256File(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("SHA256File succeeded on a missing file")
	}
}

func TestBlake3Text(t *testing.T) {
	got := Blake3Text("abc")
	if !strings.HasPrefix(got, "blake3:") || len(got) != len("blake3:")+64 {
		t.Fatalf("Blake3Text = %q", got)
	}
	if got == Blake3Text("abd") {
		t.Fatal("distinct inputs collided")
	}
}

func original() *record.Record {
	return record.MustOf(
		"session_id", "s123",
		"agent_id", "summarizer",
		"model_id", "llama3.2:8b",
		"temp", 0.3,
		"gen_tokens", 150,
		"prompt_text", "This is sensitive",
		"input_text", "Also sensitive",
		"output_text", "Generated text",
		"prompt_id_hash", SHA256Text("prompt v1"),
	)
}

func TestSanitizeForResearch(t *testing.T) {
	input := original()
	research := SanitizeForResearch(input)

	for _, kept := range []string{"session_id", "agent_id", "temp", "prompt_id_hash"} {
		if !research.Has(kept) {
			t.Errorf("%s removed", kept)
		}
	}
	for _, field := range []string{"prompt_text", "input_text", "output_text"} {
		if research.Has(field) {
			t.Errorf("%s still present", field)
		}
		v, ok := research.Get(field + "_hash")
		s, _ := v.AsString()
		if !ok || !strings.HasPrefix(s, "sha256:") {
			t.Errorf("%s_hash = %q", field, s)
		}
	}
	v, _ := research.Get("prompt_text_hash")
	if s, _ := v.AsString(); s != SHA256Text("This is sensitive") {
		t.Errorf("prompt_text_hash = %s", s)
	}
	if !input.Has("prompt_text") {
		t.Fatal("input record modified")
	}
}

func TestAnonymizeForPublic(t *testing.T) {
	public := AnonymizeForPublic(original())
	for _, kept := range []string{"session_id", "agent_id", "model_id", "temp", "gen_tokens"} {
		if !public.Has(kept) {
			t.Errorf("%s removed", kept)
		}
	}
	for _, dropped := range []string{"prompt_text", "input_text", "output_text", "prompt_id_hash", "prompt_text_hash"} {
		if public.Has(dropped) {
			t.Errorf("%s still present", dropped)
		}
	}
}
