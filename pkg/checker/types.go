package checker

import "fmt"

// TypeKind classifies a type expression. The set is closed; anything the
// reader does not recognise is KindUnsupported.
type TypeKind int

const (
	KindUnsupported TypeKind = iota
	KindKeyword
	KindLiteral
	KindReference
	KindArray
	KindTuple
	KindObject
	KindUnion
	KindIntersection
	KindTemplate
	KindIndexedAccess
	KindTypeQuery
	KindKeyOf
	KindConditional
	KindFunction
)

var kindNames = [...]string{
	KindUnsupported:   "unsupported",
	KindKeyword:       "keyword",
	KindLiteral:       "literal",
	KindReference:     "reference",
	KindArray:         "array",
	KindTuple:         "tuple",
	KindObject:        "object",
	KindUnion:         "union",
	KindIntersection:  "intersection",
	KindTemplate:      "template",
	KindIndexedAccess: "indexed access",
	KindTypeQuery:     "type query",
	KindKeyOf:         "keyof",
	KindConditional:   "conditional",
	KindFunction:      "function",
}

func (k TypeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// LiteralKind is the type of a literal value.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
)

// TypeID identifies a type expression within one file. Two expressions are
// the same type identity exactly when they span the same bytes.
type TypeID struct {
	Start uint32
	End   uint32
}

// Location is a 1-based source position.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Type is one type expression as written in the source.
//
// Which fields are set depends on Kind:
//
//	KindKeyword        Name ("string", "never", "object", ...)
//	KindLiteral        Literal
//	KindReference      Name (possibly qualified "ns.Foo"), Arguments
//	KindArray          Element
//	KindTuple          Elements
//	KindObject         Members
//	KindUnion          Types
//	KindIntersection   Types
//	KindTemplate       Spans
//	KindIndexedAccess  Object, Index
//	KindTypeQuery      Name, and Index when written typeof x[number]
//	KindKeyOf          Operand
type Type struct {
	ID       TypeID
	Kind     TypeKind
	Text     string
	Location Location

	Name      string
	Literal   *LiteralValue
	Arguments []*Type
	Element   *Type
	Elements  []TupleElement
	Members   []Member
	Types     []*Type
	Spans     []TemplateSpan
	Object    *Type
	Index     *Type
	Operand   *Type
}

// LiteralValue is a literal written in a type or a constant initializer.
type LiteralValue struct {
	Kind   LiteralKind
	String string
	Number float64
	Bool   bool
}

// Value returns the literal as a Go value (string, float64 or bool).
func (l *LiteralValue) Value() any {
	switch l.Kind {
	case LiteralNumber:
		return l.Number
	case LiteralBoolean:
		return l.Bool
	default:
		return l.String
	}
}

// TupleElement is one position of a tuple type.
type TupleElement struct {
	Type     *Type
	Optional bool
	Rest     bool
}

// TemplateSpan is either literal text (Type == nil) or an interpolation.
type TemplateSpan struct {
	Text string
	Type *Type
}

// MemberKind classifies an object or interface member.
type MemberKind int

const (
	MemberProperty MemberKind = iota
	MemberMethod
	MemberCall
	MemberConstruct
	MemberIndex
	MemberMapped
)

func (k MemberKind) String() string {
	switch k {
	case MemberProperty:
		return "property"
	case MemberMethod:
		return "method signature"
	case MemberCall:
		return "call signature"
	case MemberConstruct:
		return "construct signature"
	case MemberIndex:
		return "index signature"
	case MemberMapped:
		return "mapped type"
	}
	return "member"
}

// Member is one member of an object type or interface body. Type is nil for
// a property written without an annotation.
type Member struct {
	Kind     MemberKind
	Name     string
	Optional bool
	// Computed marks a property whose name is an expression such as [key].
	Computed bool
	Type     *Type
	Location Location
}
