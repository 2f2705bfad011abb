package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Declaration is a named type with its parameters and resolved body.
//
// Exported is false only for declarations pulled into the output because an
// exported declaration refers to them by name.
type Declaration struct {
	Name           string
	TypeParameters []*GenericParam
	Body           Node
	Exported       bool
}

// IsGeneric reports whether the declaration has type parameters.
func (d *Declaration) IsGeneric() bool {
	return len(d.TypeParameters) > 0
}

// Param returns the named type parameter.
func (d *Declaration) Param(name string) (*GenericParam, bool) {
	for _, p := range d.TypeParameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Schema maps declaration names to declarations in insertion order.
type Schema struct {
	decls *orderedmap.OrderedMap[string, *Declaration]
}

// New returns an empty Schema.
func New() *Schema {
	return &Schema{decls: orderedmap.New[string, *Declaration]()}
}

// Add stores d under its name, replacing any previous declaration of the same
// name in place.
func (s *Schema) Add(d *Declaration) {
	s.decls.Set(d.Name, d)
}

// Get returns the named declaration.
func (s *Schema) Get(name string) (*Declaration, bool) {
	return s.decls.Get(name)
}

// Len returns the number of declarations.
func (s *Schema) Len() int {
	return s.decls.Len()
}

// Names returns declaration names in order.
func (s *Schema) Names() []string {
	names := make([]string, 0, s.decls.Len())
	for pair := s.decls.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Declarations returns all declarations in order.
func (s *Schema) Declarations() []*Declaration {
	out := make([]*Declaration, 0, s.decls.Len())
	for pair := s.decls.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Exported returns only the exported declarations, in order.
func (s *Schema) Exported() []*Declaration {
	var out []*Declaration
	for pair := s.decls.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Exported {
			out = append(out, pair.Value)
		}
	}
	return out
}
