package checker

import "slices"

// DeclKind classifies a named declaration.
type DeclKind int

const (
	DeclTypeAlias DeclKind = iota
	DeclInterface
	DeclClass
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclTypeAlias:
		return "type alias"
	case DeclInterface:
		return "interface"
	case DeclClass:
		return "class"
	case DeclEnum:
		return "enum"
	}
	return "declaration"
}

// TypeParameter is one entry of a declaration's type parameter list.
type TypeParameter struct {
	Name       string
	Constraint *Type
	Default    *Type
}

// Declaration is a named entry of the type namespace.
//
// For an interface declared more than once, Members and Extends hold the
// merged contents of every declaration in source order.
type Declaration struct {
	Name     string
	Kind     DeclKind
	Exported bool
	// Aliases lists public names from "export { Name as Alias }" clauses.
	Aliases        []string
	TypeParameters []TypeParameter
	// Value is the right-hand side of a type alias.
	Value *Type
	// Extends lists interface heritage types in order.
	Extends []*Type
	// Members lists interface body members in order.
	Members  []Member
	ID       TypeID
	Location Location
}

// PublicNames returns the names d is exported under: its own name when
// exported directly, then its aliases in clause order.
func (d *Declaration) PublicNames() []string {
	var names []string
	if d.Exported {
		names = append(names, d.Name)
	}
	for _, a := range d.Aliases {
		if a != d.Name {
			names = append(names, a)
		}
	}
	return names
}

// IsPublic reports whether d is exported under any name.
func (d *Declaration) IsPublic() bool {
	return d.Exported || len(d.Aliases) > 0
}

// ValueKind classifies a constant initializer.
type ValueKind int

const (
	ValueOther ValueKind = iota
	ValueLiteral
	ValueArray
)

// Value is a classified initializer expression.
type Value struct {
	Kind     ValueKind
	Literal  *LiteralValue
	Elements []*Value
}

// Constant is a variable declaration in the value namespace.
type Constant struct {
	Name string
	// Const is false for let and var.
	Const bool
	// ConstAssertion is set when the initializer ends in "as const".
	ConstAssertion bool
	Exported       bool
	// Type is the declared annotation, if any.
	Type     *Type
	Value    *Value
	Location Location
}

// Import is a binding brought in from another module.
type Import struct {
	Local     string
	Imported  string
	Source    string
	Namespace bool
	Default   bool
}

// Model is the read-only semantic view of one source file.
type Model struct {
	Path string
	// SyntaxErrors is set when the parser recovered from errors.
	SyntaxErrors bool

	decls     map[string]*Declaration
	order     []*Declaration
	constants map[string]*Constant
	imports   map[string]Import
	reexports []string
}

func newModel(path string) *Model {
	return &Model{
		Path:      path,
		decls:     make(map[string]*Declaration),
		constants: make(map[string]*Constant),
		imports:   make(map[string]Import),
	}
}

// Declarations returns every declaration of the type namespace in source
// order of first appearance.
func (m *Model) Declarations() []*Declaration {
	return m.order
}

// Exports returns the declarations exported under any name, in source order.
func (m *Model) Exports() []*Declaration {
	var out []*Declaration
	for _, d := range m.order {
		if d.IsPublic() {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a declaration in the type namespace.
func (m *Model) Lookup(name string) (*Declaration, bool) {
	d, ok := m.decls[name]
	return d, ok
}

// Constant finds a variable in the value namespace.
func (m *Model) Constant(name string) (*Constant, bool) {
	c, ok := m.constants[name]
	return c, ok
}

// Import finds an imported binding by its local name.
func (m *Model) Import(name string) (Import, bool) {
	imp, ok := m.imports[name]
	return imp, ok
}

// Reexports lists names re-exported from other modules.
func (m *Model) Reexports() []string {
	return m.reexports
}

// IsExported reports whether the named declaration is exported.
func (m *Model) IsExported(name string) bool {
	d, ok := m.decls[name]
	return ok && d.Exported
}

func (m *Model) addDeclaration(d *Declaration) {
	existing, ok := m.decls[d.Name]
	if !ok {
		m.decls[d.Name] = d
		m.order = append(m.order, d)
		return
	}
	if existing.Kind == DeclInterface && d.Kind == DeclInterface {
		existing.Extends = append(existing.Extends, d.Extends...)
		existing.Members = append(existing.Members, d.Members...)
		existing.Exported = existing.Exported || d.Exported
		if len(existing.TypeParameters) == 0 {
			existing.TypeParameters = d.TypeParameters
		}
		return
	}
	// Duplicate identifiers are a compile error; the first declaration wins.
	existing.Exported = existing.Exported || d.Exported
}

// markExported records that name is exported as alias. A type
// declaration exported under another name keeps its own name private.
func (m *Model) markExported(name, alias string) bool {
	if d, ok := m.decls[name]; ok {
		if alias == "" || alias == name {
			d.Exported = true
		} else if !slices.Contains(d.Aliases, alias) {
			d.Aliases = append(d.Aliases, alias)
		}
		return true
	}
	if c, ok := m.constants[name]; ok {
		c.Exported = true
		return true
	}
	return false
}
