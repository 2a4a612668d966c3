// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/resonant-knowledge-lab/rkl/lib/record"
)

// DefaultVersion is the schema version reported for artifact types
// with no registered schema.
const DefaultVersion = "v1.0"

// NoSchemaNote is the single problem reported when validating an
// artifact type the catalog does not know. Validation still succeeds.
const NoSchemaNote = "no schema registered"

// ErrDuplicateSchema is returned by Register when the artifact type
// already has a schema.
var ErrDuplicateSchema = errors.New("schema already registered")

// Schema describes one artifact type.
type Schema struct {
	// Version is the schema revision tag, always starting with "v".
	Version string

	ArtifactType string

	// RequiredFields must be present in every record. Presence is
	// what counts: a field holding null satisfies the requirement.
	RequiredFields []string

	// FieldTypes declares the expected kind of known fields. It is
	// documentation for downstream readers and is not enforced.
	FieldTypes map[string]record.Kind
}

// Requires reports whether field is one of the schema's required
// fields.
func (s *Schema) Requires(field string) bool {
	return slices.Contains(s.RequiredFields, field)
}

// Missing returns the required fields absent from rec, in declaration
// order.
func (s *Schema) Missing(rec *record.Record) []string {
	var missing []string
	for _, field := range s.RequiredFields {
		if !rec.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func (s *Schema) check() error {
	if s.ArtifactType == "" {
		return errors.New("schema has empty artifact type")
	}
	if !strings.HasPrefix(s.Version, "v") {
		return fmt.Errorf("schema %q: version %q must start with \"v\"", s.ArtifactType, s.Version)
	}
	seen := make(map[string]bool, len(s.RequiredFields))
	for _, field := range s.RequiredFields {
		if field == "" {
			return fmt.Errorf("schema %q: empty required field name", s.ArtifactType)
		}
		if seen[field] {
			return fmt.Errorf("schema %q: required field %q listed twice", s.ArtifactType, field)
		}
		seen[field] = true
	}
	return nil
}

// Catalog maps artifact types to schemas. The zero value is an empty
// catalog ready for Register.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: make(map[string]*Schema)}
}

// Register adds a schema. The catalog keeps its own copy, so later
// changes to s do not affect it.
func (c *Catalog) Register(s Schema) error {
	if err := s.check(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schemas == nil {
		c.schemas = make(map[string]*Schema)
	}
	if _, exists := c.schemas[s.ArtifactType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSchema, s.ArtifactType)
	}

	stored := &Schema{
		Version:        s.Version,
		ArtifactType:   s.ArtifactType,
		RequiredFields: slices.Clone(s.RequiredFields),
		FieldTypes:     make(map[string]record.Kind, len(s.FieldTypes)),
	}
	for field, kind := range s.FieldTypes {
		stored.FieldTypes[field] = kind
	}
	c.schemas[s.ArtifactType] = stored
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(s Schema) {
	if err := c.Register(s); err != nil {
		panic(err)
	}
}

// Lookup returns the schema for artifactType. The returned schema is
// shared and must not be modified.
func (c *Catalog) Lookup(artifactType string) (*Schema, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[artifactType]
	return s, ok
}

// Types returns the registered artifact types, sorted.
func (c *Catalog) Types() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.schemas))
	for artifactType := range c.schemas {
		types = append(types, artifactType)
	}
	sort.Strings(types)
	return types
}

// SchemaVersion returns the registered version for artifactType, or
// DefaultVersion when none is registered.
func (c *Catalog) SchemaVersion(artifactType string) string {
	if s, ok := c.Lookup(artifactType); ok {
		return s.Version
	}
	return DefaultVersion
}

// Validate checks rec against the schema for artifactType. ok is false
// only when a registered schema's required fields are missing; each
// missing field produces one problem. An unknown artifact type is
// valid and yields the single problem NoSchemaNote.
//
// Validate never inspects field values. Declared field types are not
// enforced.
func (c *Catalog) Validate(artifactType string, rec *record.Record) (ok bool, problems []string) {
	s, found := c.Lookup(artifactType)
	if !found {
		return true, []string{NoSchemaNote}
	}
	for _, field := range s.Missing(rec) {
		problems = append(problems, fmt.Sprintf("missing required field: %s", field))
	}
	return len(problems) == 0, problems
}
