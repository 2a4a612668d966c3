// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
)

// Kind is the closed set of value kinds a record field may hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns the lowercase kind name. These names are also the
// type tags used by schema field type declarations.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one field value. The zero Value is null.
type Value struct {
	kind    Kind
	str     string
	boolean bool
	integer bool    // number was built from an integer; see i
	i       int64   // valid when integer
	f       float64 // valid when !integer
	list    []Value
	fields  *Record
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Int returns an integer number value.
func Int(i int64) Value { return Value{kind: KindNumber, integer: true, i: i} }

// Float returns a floating-point number value. NaN and infinities have
// no JSON representation; use [ValueOf] to get an error for them
// instead of a value that fails at flush time.
func Float(f float64) Value { return Value{kind: KindNumber, f: f} }

// List returns a list value holding a copy of items.
func List(items ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Map returns a nested mapping value. A nil record is null.
func Map(r *Record) Value {
	if r == nil {
		return Null()
	}
	return Value{kind: KindMap, fields: r}
}

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string and true if v is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsBool returns the boolean and true if v is a boolean.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// AsFloat returns the number as float64 and true if v is a number.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.integer {
		return float64(v.i), true
	}
	return v.f, true
}

// AsInt returns the number as int64 and true if v is a number with no
// fractional part that fits in an int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.integer {
		return v.i, true
	}
	if v.f != math.Trunc(v.f) || v.f < math.MinInt64 || v.f >= math.MaxInt64 {
		return 0, false
	}
	return int64(v.f), true
}

// AsList returns a copy of the list items and true if v is a list.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsMap returns the nested record and true if v is a mapping. The
// returned record is shared with v; clone it before mutating.
func (v Value) AsMap() (*Record, bool) {
	return v.fields, v.kind == KindMap
}

// Interface converts v to plain Go values: nil, string, bool, int64 or
// float64, []any, map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.boolean
	case KindNumber:
		if v.integer {
			return v.i
		}
		return v.f
	case KindList:
		items := make([]any, len(v.list))
		for index, item := range v.list {
			items[index] = item.Interface()
		}
		return items
	case KindMap:
		return v.fields.ToMap()
	default:
		return nil
	}
}

// clone returns a deep copy of v.
func (v Value) clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for index, item := range v.list {
			items[index] = item.clone()
		}
		v.list = items
	case KindMap:
		v.fields = v.fields.Clone()
	}
	return v
}

// Equal reports whether a and b hold the same value. Numbers compare
// numerically, so Int(2) equals Float(2). Nested mappings compare
// without regard to key order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		if a.integer && b.integer {
			return a.i == b.i
		}
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for index := range a.list {
			if !Equal(a.list[index], b.list[index]) {
				return false
			}
		}
		return true
	case KindMap:
		return a.fields.Equal(b.fields)
	default:
		return false
	}
}

// ValueOf converts a Go value into a Value. Accepted inputs: nil,
// Value, *Record, string, bool, every integer and float type,
// json.Number, and slices/arrays or string-keyed maps whose elements
// are themselves accepted. Map keys are sorted, since Go maps carry no
// order.
func ValueOf(x any) (Value, error) {
	switch typed := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case *Record:
		if typed == nil {
			return Null(), nil
		}
		return Map(typed), nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case int:
		return Int(int64(typed)), nil
	case int8:
		return Int(int64(typed)), nil
	case int16:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint:
		return fromUint(uint64(typed)), nil
	case uint8:
		return Int(int64(typed)), nil
	case uint16:
		return Int(int64(typed)), nil
	case uint32:
		return Int(int64(typed)), nil
	case uint64:
		return fromUint(typed), nil
	case float32:
		return fromFloat(float64(typed))
	case float64:
		return fromFloat(typed)
	case json.Number:
		return parseNumber(string(typed))
	case []any:
		items := make([]Value, len(typed))
		for index, item := range typed {
			converted, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", index, err)
			}
			items[index] = converted
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		nested, err := FromMap(typed)
		if err != nil {
			return Value{}, err
		}
		return Map(nested), nil
	}
	return valueOfReflect(reflect.ValueOf(x))
}

// valueOfReflect handles typed slices, arrays and string-keyed maps
// ([]string, map[string]int, ...) that the type switch does not list.
func valueOfReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for index := range items {
			converted, err := ValueOf(rv.Index(index).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", index, err)
			}
			items[index] = converted
		}
		return Value{kind: KindList, list: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("unsupported map key type %s: keys must be strings", rv.Type().Key())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		keys := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		nested := New()
		for _, key := range keys {
			element := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			converted, err := ValueOf(element.Interface())
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", key, err)
			}
			nested.SetValue(key, converted)
		}
		return Map(nested), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Invalid:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %s", rv.Type())
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("unsupported number %v: NaN and infinities cannot be serialized", f)
	}
	return Float(f), nil
}

func parseNumber(text string) (Value, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return fromFloat(f)
}
