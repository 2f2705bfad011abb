package checker

import (
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tscanon/pkg/parser/queries"
)

// builder reads one syntax tree into a Model. It is used once and discarded.
type builder struct {
	source []byte
	model  *Model
	logger *slog.Logger
}

func (b *builder) text(n *ts.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(b.source)
}

// readProgram walks the top-level statements in source order.
func (b *builder) readProgram(root *ts.Node) {
	for _, stmt := range namedChildren(root) {
		b.readStatement(stmt, false)
	}
}

func (b *builder) readStatement(n *ts.Node, exported bool) {
	switch n.Kind() {
	case "export_statement":
		// Clauses are handled by the export query; only inline
		// declarations are read here.
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			b.readStatement(decl, true)
		}

	case "ambient_declaration":
		for _, child := range namedChildren(n) {
			b.readStatement(child, exported)
		}

	case "type_alias_declaration":
		d := b.newDeclaration(n, DeclTypeAlias, exported)
		d.Value = b.readType(n.ChildByFieldName("value"))
		b.model.addDeclaration(d)

	case "interface_declaration":
		d := b.newDeclaration(n, DeclInterface, exported)
		if clause := findChildByKind(n, "extends_type_clause"); clause != nil {
			for _, base := range namedChildren(clause) {
				d.Extends = append(d.Extends, b.readType(base))
			}
		}
		if body := fieldOrKind(n, "body", "interface_body"); body != nil {
			d.Members = b.readMembers(body)
		} else if body := findChildByKind(n, "object_type"); body != nil {
			d.Members = b.readMembers(body)
		}
		b.model.addDeclaration(d)

	case "class_declaration", "abstract_class_declaration":
		b.model.addDeclaration(b.newDeclaration(n, DeclClass, exported))

	case "enum_declaration":
		b.model.addDeclaration(b.newDeclaration(n, DeclEnum, exported))

	case "lexical_declaration", "variable_declaration":
		isConst := false
		if kind := n.ChildByFieldName("kind"); kind != nil {
			isConst = b.text(kind) == "const"
		} else if first := n.Child(0); first != nil {
			isConst = first.Kind() == "const"
		}
		for _, child := range namedChildren(n) {
			if child.Kind() == "variable_declarator" {
				b.readConstant(child, isConst, exported)
			}
		}
	}
}

func (b *builder) newDeclaration(n *ts.Node, kind DeclKind, exported bool) *Declaration {
	d := &Declaration{
		Name:     b.text(n.ChildByFieldName("name")),
		Kind:     kind,
		Exported: exported,
		ID:       nodeID(n),
		Location: nodeLocation(n),
	}
	if params := fieldOrKind(n, "type_parameters", "type_parameters"); params != nil {
		d.TypeParameters = b.readTypeParameters(params)
	}
	return d
}

func (b *builder) readTypeParameters(n *ts.Node) []TypeParameter {
	var out []TypeParameter
	for _, child := range namedChildren(n) {
		if child.Kind() != "type_parameter" {
			continue
		}
		tp := TypeParameter{Name: b.text(fieldOrKind(child, "name", "type_identifier"))}
		if c := fieldOrKind(child, "constraint", "constraint"); c != nil {
			tp.Constraint = b.readType(firstNamed(c))
		}
		if v := fieldOrKind(child, "value", "default_type"); v != nil {
			tp.Default = b.readType(firstNamed(v))
		}
		out = append(out, tp)
	}
	return out
}

func (b *builder) readConstant(n *ts.Node, isConst, exported bool) {
	name := n.ChildByFieldName("name")
	if name == nil || name.Kind() != "identifier" {
		// Destructuring patterns bind no single name.
		return
	}

	c := &Constant{
		Name:     b.text(name),
		Const:    isConst,
		Exported: exported,
		Location: nodeLocation(n),
	}
	if annotation := n.ChildByFieldName("type"); annotation != nil {
		c.Type = b.readType(annotation)
	}
	if value := n.ChildByFieldName("value"); value != nil {
		c.Value, c.ConstAssertion = b.readValue(value)
	}
	if _, ok := b.model.constants[c.Name]; !ok {
		b.model.constants[c.Name] = c
	}
}

// readValue classifies an initializer. The second result reports a trailing
// "as const".
func (b *builder) readValue(n *ts.Node) (*Value, bool) {
	switch n.Kind() {
	case "as_expression":
		inner := firstNamed(n)
		if inner == nil {
			return &Value{Kind: ValueOther}, false
		}
		v, _ := b.readValue(inner)
		last := lastChild(n)
		return v, last != nil && last.Kind() == "const"

	case "satisfies_expression", "parenthesized_expression", "non_null_expression":
		if inner := firstNamed(n); inner != nil {
			return b.readValue(inner)
		}

	case "string":
		return &Value{Kind: ValueLiteral, Literal: &LiteralValue{Kind: LiteralString, String: unquoteString(b.text(n))}}, false

	case "template_string":
		if findChildByKind(n, "template_substitution") != nil {
			break
		}
		return &Value{Kind: ValueLiteral, Literal: &LiteralValue{Kind: LiteralString, String: unquoteString(b.text(n))}}, false

	case "number", "unary_expression":
		if v, ok := parseNumber(b.text(n)); ok {
			return &Value{Kind: ValueLiteral, Literal: &LiteralValue{Kind: LiteralNumber, Number: v}}, false
		}

	case "true", "false":
		return &Value{Kind: ValueLiteral, Literal: &LiteralValue{Kind: LiteralBoolean, Bool: n.Kind() == "true"}}, false

	case "array":
		v := &Value{Kind: ValueArray}
		for _, el := range namedChildren(n) {
			ev, _ := b.readValue(el)
			v.Elements = append(v.Elements, ev)
		}
		return v, false
	}
	return &Value{Kind: ValueOther}, false
}

// applyImports records import bindings from the import query's matches.
func (b *builder) applyImports(matches []queries.QueryMatch) {
	for _, m := range matches {
		source := m.Capture("import", "source")
		if source == nil {
			continue
		}
		from := unquoteString(source.Text)

		if c := m.Capture("import", "specifier"); c != nil {
			imported := b.text(c.Node.ChildByFieldName("name"))
			local := imported
			if alias := c.Node.ChildByFieldName("alias"); alias != nil {
				local = b.text(alias)
			}
			if imported == "" {
				continue
			}
			b.model.imports[local] = Import{Local: local, Imported: imported, Source: from}
		}
		if c := m.Capture("import", "default"); c != nil {
			b.model.imports[c.Text] = Import{Local: c.Text, Imported: "default", Source: from, Default: true}
		}
		if c := m.Capture("import", "namespace"); c != nil {
			b.model.imports[c.Text] = Import{Local: c.Text, Imported: "*", Source: from, Namespace: true}
		}
	}
}

// applyExports marks names listed in export clauses. "export { A as B }"
// exports the declaration A under the public name B.
func (b *builder) applyExports(matches []queries.QueryMatch) {
	for _, m := range matches {
		spec := m.Capture("export", "specifier")
		stmt := m.Capture("export", "statement")
		if spec == nil || stmt == nil {
			continue
		}
		name := b.text(spec.Node.ChildByFieldName("name"))
		if name == "" {
			continue
		}

		if stmt.Node.ChildByFieldName("source") != nil {
			b.model.reexports = append(b.model.reexports, name)
			continue
		}
		alias := b.text(spec.Node.ChildByFieldName("alias"))
		if alias == "default" {
			b.logger.Debug("default export of type has no public name", "path", b.model.Path, "name", name)
			continue
		}
		if b.model.markExported(name, alias) {
			continue
		}
		if _, ok := b.model.imports[name]; ok {
			b.model.reexports = append(b.model.reexports, name)
			continue
		}
		b.logger.Debug("export of unknown name", "path", b.model.Path, "name", name)
	}
}
