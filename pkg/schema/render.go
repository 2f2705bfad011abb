package schema

import (
	"strconv"
	"strings"
)

// String renders the node as TypeScript-like type syntax. The output is
// deterministic and is used as a structural fingerprint.

func (p *Primitive) String() string {
	return p.Name
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return "unknown"
	}
}

func (a *Array) String() string {
	return wrapOperand(a.Element) + "[]"
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, el := range t.Elements {
		switch {
		case el.Rest:
			parts[i] = "..." + el.Type.String()
		case el.Optional:
			parts[i] = wrapOperand(el.Type) + "?"
		default:
			parts[i] = el.Type.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o *Object) String() string {
	if o.Len() == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{ ")
	first := true
	o.Each(func(name string, p Property) bool {
		if !first {
			b.WriteString("; ")
		}
		first = false
		b.WriteString(propertyName(name))
		if p.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		b.WriteString(p.Type.String())
		return true
	})
	b.WriteString(" }")
	return b.String()
}

func (u *Union) String() string {
	if len(u.Members) == 0 {
		return Never
	}
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (in *Intersection) String() string {
	if len(in.Members) == 0 {
		return Unknown
	}
	parts := make([]string, len(in.Members))
	for i, m := range in.Members {
		if m.Kind() == KindUnion {
			parts[i] = "(" + m.String() + ")"
			continue
		}
		parts[i] = m.String()
	}
	return strings.Join(parts, " & ")
}

func (r *Ref) String() string {
	if len(r.TypeArguments) == 0 {
		return r.Name
	}
	args := make([]string, len(r.TypeArguments))
	for i, a := range r.TypeArguments {
		args[i] = a.String()
	}
	return r.Name + "<" + strings.Join(args, ", ") + ">"
}

func (g *GenericParam) String() string {
	s := g.Name
	if g.Constraint != nil {
		s += " extends " + g.Constraint.String()
	}
	if g.Default != nil {
		s += " = " + g.Default.String()
	}
	return s
}

func (t *Template) String() string {
	var b strings.Builder
	b.WriteByte('`')
	for _, p := range t.Parts {
		if p.IsLiteral() {
			text := strings.ReplaceAll(p.Text, "`", "\\`")
			b.WriteString(strings.ReplaceAll(text, "${", "\\${"))
			continue
		}
		b.WriteString("${")
		b.WriteString(p.Type.String())
		b.WriteByte('}')
	}
	b.WriteByte('`')
	return b.String()
}

// RenderDeclaration renders d as a TypeScript type alias.
func RenderDeclaration(d *Declaration) string {
	var b strings.Builder
	if d.Exported {
		b.WriteString("export ")
	}
	b.WriteString("type ")
	b.WriteString(d.Name)
	if len(d.TypeParameters) > 0 {
		params := make([]string, len(d.TypeParameters))
		for i, p := range d.TypeParameters {
			params[i] = p.String()
		}
		b.WriteString("<" + strings.Join(params, ", ") + ">")
	}
	b.WriteString(" = ")
	b.WriteString(d.Body.String())
	b.WriteByte(';')
	return b.String()
}

func wrapOperand(n Node) string {
	switch n.Kind() {
	case KindUnion, KindIntersection:
		return "(" + n.String() + ")"
	}
	return n.String()
}

func propertyName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
