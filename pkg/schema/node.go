// Package schema defines the canonical type graph: a language-agnostic
// description of exported type declarations.
//
// Nodes are immutable once built. Constructors return fresh values and every
// transform (Substitute, Object filtering) produces new nodes rather than
// editing existing ones, so a node can be shared between declarations.
package schema

// Kind identifies the variant of a Node.
type Kind string

const (
	KindPrimitive    Kind = "primitive"
	KindLiteral      Kind = "literal"
	KindArray        Kind = "array"
	KindTuple        Kind = "tuple"
	KindObject       Kind = "object"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindRef          Kind = "ref"
	KindGenericParam Kind = "generic"
	KindTemplate     Kind = "template"
)

// Node is a canonical type node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	String() string
	node()
}

// Primitive names.
const (
	String    = "string"
	Number    = "number"
	Boolean   = "boolean"
	Any       = "any"
	Unknown   = "unknown"
	Null      = "null"
	Undefined = "undefined"
	Void      = "void"
	Never     = "never"
)

var primitives = map[string]bool{
	String: true, Number: true, Boolean: true, Any: true, Unknown: true,
	Null: true, Undefined: true, Void: true, Never: true,
}

// IsPrimitiveName reports whether name is a canonical primitive.
func IsPrimitiveName(name string) bool {
	return primitives[name]
}

// Primitive is one of the built-in scalar types.
type Primitive struct {
	Name string
}

// Literal is a single literal value. Value holds a string, float64 or bool.
type Literal struct {
	Value any
}

// Array is a homogeneous list.
type Array struct {
	Element Node
}

// TupleElement is one positional member of a Tuple.
type TupleElement struct {
	Type     Node
	Optional bool
	Rest     bool
}

// Tuple is a fixed-position list.
type Tuple struct {
	Elements []TupleElement
}

// Union is an ordered set of alternatives. Members keep source order and are
// not deduplicated.
type Union struct {
	Members []Node
}

// Intersection is an ordered set of types that all apply.
type Intersection struct {
	Members []Node
}

// Ref names another declaration.
//
// Parameter marks a symbolic reference to a type parameter of the enclosing
// generic declaration. External marks a name imported from another module
// that this conversion cannot see.
type Ref struct {
	Name          string
	TypeArguments []Node
	Parameter     bool
	External      bool
}

// GenericParam describes one type parameter of a generic declaration.
type GenericParam struct {
	Name       string
	Constraint Node
	Default    Node
}

// TemplatePart is either a literal text segment (Type == nil) or an
// interpolated type.
type TemplatePart struct {
	Text string
	Type Node
}

// IsLiteral reports whether the part is a plain text segment.
func (p TemplatePart) IsLiteral() bool {
	return p.Type == nil
}

// Template is a template literal type kept in symbolic form.
type Template struct {
	Parts []TemplatePart
}

func (*Primitive) Kind() Kind    { return KindPrimitive }
func (*Literal) Kind() Kind      { return KindLiteral }
func (*Array) Kind() Kind        { return KindArray }
func (*Tuple) Kind() Kind        { return KindTuple }
func (*Object) Kind() Kind       { return KindObject }
func (*Union) Kind() Kind        { return KindUnion }
func (*Intersection) Kind() Kind { return KindIntersection }
func (*Ref) Kind() Kind          { return KindRef }
func (*GenericParam) Kind() Kind { return KindGenericParam }
func (*Template) Kind() Kind     { return KindTemplate }

func (*Primitive) node()    {}
func (*Literal) node()      {}
func (*Array) node()        {}
func (*Tuple) node()        {}
func (*Object) node()       {}
func (*Union) node()        {}
func (*Intersection) node() {}
func (*Ref) node()          {}
func (*GenericParam) node() {}
func (*Template) node()     {}

// NewPrimitive returns a Primitive node.
func NewPrimitive(name string) *Primitive {
	return &Primitive{Name: name}
}

// NewLiteral returns a Literal node. Integer values are normalised to float64
// so that equal numbers compare equal regardless of how they were produced.
func NewLiteral(value any) *Literal {
	switch v := value.(type) {
	case int:
		return &Literal{Value: float64(v)}
	case int64:
		return &Literal{Value: float64(v)}
	}
	return &Literal{Value: value}
}

// NewUnion returns a Union of members.
func NewUnion(members ...Node) *Union {
	return &Union{Members: members}
}

// NewIntersection returns an Intersection of members.
func NewIntersection(members ...Node) *Intersection {
	return &Intersection{Members: members}
}

// NewRef returns a reference to a declared type.
func NewRef(name string, args ...Node) *Ref {
	return &Ref{Name: name, TypeArguments: args}
}

// NewParamRef returns a symbolic reference to a type parameter.
func NewParamRef(name string) *Ref {
	return &Ref{Name: name, Parameter: true}
}
