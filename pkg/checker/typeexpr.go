package checker

import (
	"strconv"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// readType converts a type expression node into a Type.
func (b *builder) readType(n *ts.Node) *Type {
	if n == nil {
		return nil
	}

	switch n.Kind() {
	case "type_annotation", "parenthesized_type", "readonly_type", "omitting_type_annotation",
		"opting_type_annotation", "asserts_annotation":
		if inner := firstNamed(n); inner != nil {
			return b.readType(inner)
		}
	}

	t := &Type{ID: nodeID(n), Text: b.text(n), Location: nodeLocation(n)}

	switch n.Kind() {
	case "predefined_type":
		t.Kind = KindKeyword
		t.Name = t.Text

	case "literal_type":
		b.readLiteralType(n, t)

	case "type_identifier", "nested_type_identifier", "identifier":
		t.Kind = KindReference
		t.Name = t.Text

	case "generic_type":
		t.Kind = KindReference
		name := fieldOrKind(n, "name", "type_identifier")
		if name == nil {
			name = findChildByKind(n, "nested_type_identifier")
		}
		if name != nil {
			t.Name = b.text(name)
		}
		for _, arg := range namedChildren(fieldOrKind(n, "type_arguments", "type_arguments")) {
			t.Arguments = append(t.Arguments, b.readType(arg))
		}

	case "array_type":
		t.Kind = KindArray
		t.Element = b.readType(firstNamed(n))

	case "tuple_type":
		t.Kind = KindTuple
		t.Elements = b.readTupleElements(n)

	case "object_type", "interface_body":
		t.Kind = KindObject
		t.Members = b.readMembers(n)

	case "union_type":
		t.Kind = KindUnion
		t.Types = b.flatten(n, "union_type")

	case "intersection_type":
		t.Kind = KindIntersection
		t.Types = b.flatten(n, "intersection_type")

	case "template_literal_type":
		t.Kind = KindTemplate
		t.Spans = b.readTemplateSpans(n)

	case "lookup_type", "indexed_access_type":
		children := namedChildren(n)
		if len(children) != 2 {
			t.Kind = KindUnsupported
			break
		}
		t.Kind = KindIndexedAccess
		t.Object = b.readType(children[0])
		t.Index = b.readType(children[1])

	case "type_query":
		b.readTypeQuery(n, t)

	case "index_type_query":
		t.Kind = KindKeyOf
		t.Operand = b.readType(firstNamed(n))

	case "conditional_type":
		t.Kind = KindConditional

	case "function_type", "constructor_type":
		t.Kind = KindFunction

	default:
		t.Kind = KindUnsupported
	}

	return t
}

func (b *builder) readLiteralType(n *ts.Node, t *Type) {
	lit := firstNamed(n)
	if lit == nil {
		t.Kind = KindUnsupported
		return
	}

	t.Kind = KindLiteral
	switch lit.Kind() {
	case "string":
		t.Literal = &LiteralValue{Kind: LiteralString, String: unquoteString(b.text(lit))}
	case "number", "unary_expression":
		v, ok := parseNumber(b.text(lit))
		if !ok {
			t.Kind = KindUnsupported
			return
		}
		t.Literal = &LiteralValue{Kind: LiteralNumber, Number: v}
	case "true", "false":
		t.Literal = &LiteralValue{Kind: LiteralBoolean, Bool: lit.Kind() == "true"}
	case "null", "undefined":
		t.Kind = KindKeyword
		t.Name = lit.Kind()
	default:
		t.Kind = KindUnsupported
	}
}

// flatten collects the operands of a left-nested binary union or
// intersection, looking through parentheses around the same operator.
func (b *builder) flatten(n *ts.Node, kind string) []*Type {
	var out []*Type
	for _, child := range namedChildren(n) {
		inner := child
		for inner.Kind() == "parenthesized_type" {
			next := firstNamed(inner)
			if next == nil || next.Kind() != kind {
				break
			}
			inner = next
		}
		if inner.Kind() == kind {
			out = append(out, b.flatten(inner, kind)...)
			continue
		}
		out = append(out, b.readType(child))
	}
	return out
}

func (b *builder) readTupleElements(n *ts.Node) []TupleElement {
	var out []TupleElement
	for _, child := range namedChildren(n) {
		var el TupleElement
		switch child.Kind() {
		case "optional_type":
			el.Optional = true
			el.Type = b.readType(firstNamed(child))
		case "rest_type":
			el.Rest = true
			el.Type = b.readType(firstNamed(child))
		case "required_parameter", "optional_parameter", "tuple_parameter", "optional_tuple_parameter":
			el.Optional = child.Kind() == "optional_parameter" || child.Kind() == "optional_tuple_parameter"
			if name := child.ChildByFieldName("name"); name != nil && name.Kind() == "rest_pattern" {
				el.Rest = true
			}
			el.Type = b.readType(fieldOrKind(child, "type", "type_annotation"))
		default:
			el.Type = b.readType(child)
		}
		if el.Type == nil {
			el.Type = &Type{ID: nodeID(child), Kind: KindUnsupported, Text: b.text(child), Location: nodeLocation(child)}
		}
		out = append(out, el)
	}
	return out
}

// readTemplateSpans splits a template literal type into text and
// interpolations. Text is taken from the bytes between interpolations so it
// does not depend on how the grammar names string fragments.
func (b *builder) readTemplateSpans(n *ts.Node) []TemplateSpan {
	start, end := n.StartByte()+1, n.EndByte()-1
	if end < start {
		return nil
	}

	var spans []TemplateSpan
	pos := start
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.Kind() != "template_type" {
			continue
		}
		if child.StartByte() > pos {
			spans = append(spans, TemplateSpan{Text: unescape(string(b.source[pos:child.StartByte()]))})
		}
		inner := firstNamed(child)
		spans = append(spans, TemplateSpan{Type: b.readType(inner)})
		pos = child.EndByte()
	}
	if end > pos {
		spans = append(spans, TemplateSpan{Text: unescape(string(b.source[pos:end]))})
	}
	return spans
}

func (b *builder) readTypeQuery(n *ts.Node, t *Type) {
	t.Kind = KindTypeQuery
	target := firstNamed(n)
	if target == nil {
		t.Kind = KindUnsupported
		return
	}

	if target.Kind() != "subscript_expression" {
		t.Name = b.text(target)
		return
	}

	object := target.ChildByFieldName("object")
	index := target.ChildByFieldName("index")
	if object == nil || index == nil {
		children := namedChildren(target)
		if len(children) != 2 {
			t.Kind = KindUnsupported
			return
		}
		object, index = children[0], children[1]
	}
	t.Name = b.text(object)
	t.Index = b.readIndexExpression(index)
}

// readIndexExpression reads the index of typeof x[...], which the grammar
// parses as an expression rather than a type.
func (b *builder) readIndexExpression(n *ts.Node) *Type {
	t := &Type{ID: nodeID(n), Text: b.text(n), Location: nodeLocation(n)}
	switch n.Kind() {
	case "string":
		t.Kind = KindLiteral
		t.Literal = &LiteralValue{Kind: LiteralString, String: unquoteString(t.Text)}
	case "number":
		v, ok := parseNumber(t.Text)
		if !ok {
			t.Kind = KindUnsupported
			break
		}
		t.Kind = KindLiteral
		t.Literal = &LiteralValue{Kind: LiteralNumber, Number: v}
	default:
		return b.readType(n)
	}
	return t
}

func (b *builder) readMembers(body *ts.Node) []Member {
	var members []Member
	for _, child := range namedChildren(body) {
		m := Member{Location: nodeLocation(child)}
		switch child.Kind() {
		case "property_signature":
			m.Kind = MemberProperty
			m.Name, m.Computed = b.propertyName(child.ChildByFieldName("name"))
			m.Optional = findChildByKind(child, "?") != nil
			if annotation := fieldOrKind(child, "type", "type_annotation"); annotation != nil {
				m.Type = b.readType(annotation)
			}
		case "method_signature":
			m.Kind = MemberMethod
			m.Name, m.Computed = b.propertyName(child.ChildByFieldName("name"))
		case "call_signature":
			m.Kind = MemberCall
		case "construct_signature":
			m.Kind = MemberConstruct
		case "index_signature":
			m.Kind = MemberIndex
			if findChildByKind(child, "mapped_type_clause") != nil {
				m.Kind = MemberMapped
			}
		default:
			continue
		}
		members = append(members, m)
	}
	return members
}

func (b *builder) propertyName(n *ts.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case "string":
		return unquoteString(b.text(n)), false
	case "number":
		if v, ok := parseNumber(b.text(n)); ok {
			return strconv.FormatFloat(v, 'f', -1, 64), false
		}
	case "computed_property_name":
		return b.text(n), true
	}
	return b.text(n), false
}
