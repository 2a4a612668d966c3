// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"slices"
	"sort"
)

// Record is an ordered mapping from field name to Value. The zero
// Record is empty and ready to use.
type Record struct {
	keys   []string
	values map[string]Value
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]Value)}
}

// Of builds a record from alternating key/value arguments, preserving
// argument order:
//
//	rec, err := record.Of("session_id", "s1", "turn_id", 3)
func Of(pairs ...any) (*Record, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("record.Of: odd number of arguments (%d)", len(pairs))
	}
	r := New()
	for index := 0; index < len(pairs); index += 2 {
		key, ok := pairs[index].(string)
		if !ok {
			return nil, fmt.Errorf("record.Of: argument %d is %T, want string key", index, pairs[index])
		}
		if err := r.Set(key, pairs[index+1]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustOf is like Of but panics on error. Intended for literals in
// tests and examples where the arguments are known to be valid.
func MustOf(pairs ...any) *Record {
	r, err := Of(pairs...)
	if err != nil {
		panic(err)
	}
	return r
}

// FromMap builds a record from a Go map. Keys are inserted in sorted
// order.
func FromMap(m map[string]any) (*Record, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	r := New()
	for _, key := range keys {
		if err := r.Set(key, m[key]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Set converts value with ValueOf and stores it under key. A new key
// is appended at the end; an existing key keeps its position.
func (r *Record) Set(key string, value any) error {
	converted, err := ValueOf(value)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	r.SetValue(key, converted)
	return nil
}

// SetValue stores v under key.
func (r *Record) SetValue(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// SetDefault stores v under key only if key is absent. Reports whether
// the value was stored.
func (r *Record) SetDefault(key string, v Value) bool {
	if r.Has(key) {
		return false
	}
	r.SetValue(key, v)
	return true
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present. A present key holding null
// counts as present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key. Reports whether it was present.
func (r *Record) Delete(key string) bool {
	if !r.Has(key) {
		return false
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(existing string) bool { return existing == key })
	return true
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}

// Range calls fn for each field in order until fn returns false.
func (r *Record) Range(fn func(key string, v Value) bool) {
	if r == nil {
		return
	}
	for _, key := range r.keys {
		if !fn(key, r.values[key]) {
			return
		}
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := &Record{
		keys:   slices.Clone(r.keys),
		values: make(map[string]Value, len(r.values)),
	}
	for key, v := range r.values {
		clone.values[key] = v.clone()
	}
	return clone
}

// Equal reports whether r and other hold the same set of key/value
// pairs. Field order is ignored.
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	for _, key := range r.Keys() {
		mine, _ := r.Get(key)
		theirs, ok := other.Get(key)
		if !ok || !Equal(mine, theirs) {
			return false
		}
	}
	return true
}

// ToMap converts r to a plain Go map (see Value.Interface).
func (r *Record) ToMap() map[string]any {
	if r == nil {
		return nil
	}
	m := make(map[string]any, len(r.keys))
	for _, key := range r.keys {
		m[key] = r.values[key].Interface()
	}
	return m
}

// String returns the JSON encoding of r, for logs and test failures.
func (r *Record) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid record: %v>", err)
	}
	return string(data)
}
