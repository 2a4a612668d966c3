// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestOfPreservesOrder(t *testing.T) {
	rec, err := Of("session_id", "s1", "turn_id", 3, "ok", true)
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	got := strings.Join(rec.Keys(), ",")
	if got != "session_id,turn_id,ok" {
		t.Fatalf("Keys() = %q, want session_id,turn_id,ok", got)
	}

	// Overwriting keeps the original position.
	if err := rec.Set("session_id", "s2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if rec.Keys()[0] != "session_id" {
		t.Fatalf("overwrite moved key: %v", rec.Keys())
	}
	v, _ := rec.Get("session_id")
	if s, _ := v.AsString(); s != "s2" {
		t.Fatalf("session_id = %q, want s2", s)
	}
}

func TestOfRejectsBadArguments(t *testing.T) {
	if _, err := Of("a"); err == nil {
		t.Fatal("expected error for odd argument count")
	}
	if _, err := Of(1, "a"); err == nil {
		t.Fatal("expected error for non-string key")
	}
	if _, err := Of("c", make(chan int)); err == nil {
		t.Fatal("expected error for channel value")
	}
	if _, err := Of("f", math.NaN()); err == nil {
		t.Fatal("expected error for NaN")
	}
}

func TestZeroRecordUsable(t *testing.T) {
	var rec Record
	if rec.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", rec.Len())
	}
	rec.SetValue("a", Int(1))
	if !rec.Has("a") {
		t.Fatal("zero record did not accept a field")
	}

	var nilRecord *Record
	if nilRecord.Len() != 0 || nilRecord.Has("a") || nilRecord.Keys() != nil {
		t.Fatal("nil record should behave as empty")
	}
}

func TestSetDefault(t *testing.T) {
	rec := MustOf("timestamp", "caller")
	if rec.SetDefault("timestamp", String("enricher")) {
		t.Fatal("SetDefault overwrote an existing field")
	}
	if !rec.SetDefault("rkl_version", String("1.0")) {
		t.Fatal("SetDefault did not add a missing field")
	}
	v, _ := rec.Get("timestamp")
	if s, _ := v.AsString(); s != "caller" {
		t.Fatalf("timestamp = %q, want caller", s)
	}

	// A present null counts as present.
	rec.SetValue("nothing", Null())
	if rec.SetDefault("nothing", String("x")) {
		t.Fatal("SetDefault replaced an explicit null")
	}
}

func TestDelete(t *testing.T) {
	rec := MustOf("a", 1, "b", 2, "c", 3)
	if !rec.Delete("b") {
		t.Fatal("Delete(b) = false")
	}
	if rec.Delete("b") {
		t.Fatal("second Delete(b) = true")
	}
	if got := strings.Join(rec.Keys(), ","); got != "a,c" {
		t.Fatalf("Keys() = %q, want a,c", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	inner := MustOf("x", 1)
	rec := MustOf("nested", inner, "tags", []any{"a", "b"})
	clone := rec.Clone()

	inner.SetValue("x", Int(99))
	nestedValue, _ := clone.Get("nested")
	nested, _ := nestedValue.AsMap()
	x, _ := nested.Get("x")
	if i, _ := x.AsInt(); i != 1 {
		t.Fatalf("clone shares nested record: x = %d", i)
	}

	clone.SetValue("extra", Bool(true))
	if rec.Has("extra") {
		t.Fatal("mutating clone changed original")
	}
}

func TestEqualIgnoresOrder(t *testing.T) {
	a := MustOf("a", 1, "b", "two")
	b := MustOf("b", "two", "a", 1.0)
	if !a.Equal(b) {
		t.Fatalf("%s should equal %s", a, b)
	}
	c := MustOf("a", 1, "b", "three")
	if a.Equal(c) {
		t.Fatalf("%s should not equal %s", a, c)
	}
	d := MustOf("a", 1)
	if a.Equal(d) {
		t.Fatal("records of different length compared equal")
	}
}

func TestValueOfTypedCollections(t *testing.T) {
	rec := MustOf(
		"ids", []string{"a", "b"},
		"counts", map[string]int{"z": 2, "y": 1},
		"small", uint8(7),
	)
	ids, _ := rec.Get("ids")
	items, ok := ids.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("ids = %v, want 2-item list", ids.Interface())
	}
	counts, _ := rec.Get("counts")
	nested, ok := counts.AsMap()
	if !ok {
		t.Fatalf("counts kind = %s, want map", counts.Kind())
	}
	if got := strings.Join(nested.Keys(), ","); got != "y,z" {
		t.Fatalf("map keys = %q, want sorted y,z", got)
	}
	small, _ := rec.Get("small")
	if i, ok := small.AsInt(); !ok || i != 7 {
		t.Fatalf("small = %v, want 7", small.Interface())
	}
}

func TestJSONRoundTripPreservesOrderAndIntegers(t *testing.T) {
	rec := MustOf(
		"zeta", "last-alphabetically",
		"alpha", 42,
		"ratio", 0.5,
		"flag", false,
		"missing", nil,
		"nested", MustOf("k", []any{1, "two", nil}),
	)
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"zeta":"last-alphabetically","alpha":42,"ratio":0.5,"flag":false,"missing":null,"nested":{"k":[1,"two",null]}}`
	if string(data) != want {
		t.Fatalf("Marshal =\n  %s\nwant\n  %s", data, want)
	}

	decoded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !decoded.Equal(rec) {
		t.Fatalf("round trip mismatch: %s vs %s", decoded, rec)
	}
	if got := strings.Join(decoded.Keys(), ","); got != "zeta,alpha,ratio,flag,missing,nested" {
		t.Fatalf("decoded key order = %q", got)
	}
	alpha, _ := decoded.Get("alpha")
	if _, ok := alpha.Interface().(int64); !ok {
		t.Fatalf("alpha decoded as %T, want int64", alpha.Interface())
	}
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`[1,2]`, `"text"`, `{"a":1} {"b":2}`, `{"a":`, ``} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestUnmarshalIntoStruct(t *testing.T) {
	var holder struct {
		Record *Record `json:"record"`
		Value  Value   `json:"value"`
	}
	if err := json.Unmarshal([]byte(`{"record":{"b":1,"a":2},"value":[true]}`), &holder); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := strings.Join(holder.Record.Keys(), ","); got != "b,a" {
		t.Fatalf("keys = %q, want b,a", got)
	}
	if holder.Value.Kind() != KindList {
		t.Fatalf("value kind = %s, want list", holder.Value.Kind())
	}
}

func TestToMap(t *testing.T) {
	rec := MustOf("a", 1, "b", MustOf("c", "d"))
	m := rec.ToMap()
	nested, ok := m["b"].(map[string]any)
	if !ok || nested["c"] != "d" {
		t.Fatalf("ToMap() = %#v", m)
	}
}
