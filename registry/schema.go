package registry

import (
	"fmt"
	"maps"

	"go.uber.org/zap"
)

// Schema is a named schema entry. Exactly one of Schema, a structured schema
// value, or JSONSchema, a raw JSON Schema document, must be set.
type Schema struct {
	Schema     any            `json:"schema,omitempty"`
	JSONSchema map[string]any `json:"jsonSchema,omitempty"`
}

// Validate reports ErrInvalidSchema unless exactly one payload is set.
func (s Schema) Validate() error {
	if (s.Schema == nil) == (s.JSONSchema == nil) {
		return ErrInvalidSchema
	}
	return nil
}

// RegisterSchema stores s under name on this node, overwriting an existing
// local entry with a warning.
func (r *Registry) RegisterSchema(name string, s Schema) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("register schema %q: %w", name, err)
	}

	r.mu.Lock()
	_, exists := r.schemas[name]
	r.schemas[name] = s
	r.mu.Unlock()

	if exists {
		r.log().Warn("schema already registered, overwriting", zap.String("schema", name))
	}
	return nil
}

// LookupSchema returns the schema registered under name on r or its
// ancestors, or nil.
func (r *Registry) LookupSchema(name string) *Schema {
	for n := r; n != nil; n = n.parent {
		n.mu.RLock()
		s, ok := n.schemas[name]
		n.mu.RUnlock()
		if ok {
			return &s
		}
	}
	return nil
}

// ListSchemas returns every schema visible from r. Entries on r shadow
// entries of its ancestors.
func (r *Registry) ListSchemas() map[string]Schema {
	out := make(map[string]Schema)
	if r.parent != nil {
		maps.Copy(out, r.parent.ListSchemas())
	}
	r.mu.RLock()
	maps.Copy(out, r.schemas)
	r.mu.RUnlock()
	return out
}
