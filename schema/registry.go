// Package schema is the type registry consulted by the heap to decide
// whether a given field on a given type is mandatory. It is deliberately
// decoupled from value type-checking: CascadeLang stays untyped at the value
// level, while mandatoriness is tracked per type and per field.
package schema

import "sync"

// FieldDescriptor describes one field of a registered type.
type FieldDescriptor struct {
	Name      string
	Mandatory bool
}

// Schema is an immutable-after-registration type definition: a name plus an
// ordered list of field descriptors. The same field name appears at most
// once.
type Schema struct {
	Name   string
	Fields []FieldDescriptor
}

func (s *Schema) fieldMandatory(name string) (bool, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Mandatory, true
		}
	}
	return false, false
}

// Registry stores all registered type schemas, keyed by name. Redefining a
// type replaces its prior schema; objects already constructed under the
// prior schema are unaffected, but any subsequent write checks mandatoriness
// against the latest definition.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Schema
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Schema)}
}

// DefineType registers a schema, replacing any prior schema under the same
// name.
func (r *Registry) DefineType(name string, fields []FieldDescriptor) {
	cp := make([]FieldDescriptor, len(fields))
	copy(cp, fields)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = &Schema{Name: name, Fields: cp}
}

// IsFieldMandatory reports whether the named type is registered, the field
// exists in its schema, and the field's optional flag is false. An untyped
// object (empty type name, or a name never registered) has no mandatory
// fields.
func (r *Registry) IsFieldMandatory(typeName, field string) bool {
	if typeName == "" {
		return false
	}
	r.mu.RLock()
	s, ok := r.types[typeName]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	mandatory, exists := s.fieldMandatory(field)
	return exists && mandatory
}

// Schema returns the registered schema for name, for introspection by
// tooling (httpapi, the REPL). The cascade algorithm never calls this; it
// goes through IsFieldMandatory directly.
func (r *Registry) Schema(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.types[name]
	return s, ok
}

// TypeNames returns the names of all currently registered types, for
// introspection only.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	return names
}
