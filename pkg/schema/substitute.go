package schema

// Bindings maps type parameter names to the nodes that replace them.
type Bindings map[string]Node

// Substitute replaces every parameter Ref whose name is bound, at any depth.
// Subtrees that contain no bound parameter are returned unchanged, so the
// result shares structure with n.
func Substitute(n Node, b Bindings) Node {
	if n == nil || len(b) == 0 {
		return n
	}
	out, _ := substitute(n, b)
	return out
}

func substitute(n Node, b Bindings) (Node, bool) {
	switch x := n.(type) {
	case *Ref:
		if x.Parameter {
			if repl, ok := b[x.Name]; ok {
				return repl, true
			}
			return x, false
		}
		args, changed := substituteList(x.TypeArguments, b)
		if !changed {
			return x, false
		}
		return &Ref{Name: x.Name, TypeArguments: args, External: x.External}, true

	case *Array:
		el, changed := substitute(x.Element, b)
		if !changed {
			return x, false
		}
		return &Array{Element: el}, true

	case *Tuple:
		elems := make([]TupleElement, len(x.Elements))
		dirty := false
		for i, el := range x.Elements {
			t, changed := substitute(el.Type, b)
			dirty = dirty || changed
			elems[i] = TupleElement{Type: t, Optional: el.Optional, Rest: el.Rest}
		}
		if !dirty {
			return x, false
		}
		return &Tuple{Elements: elems}, true

	case *Object:
		dirty := false
		out := x.Map(func(_ string, p Property) Property {
			t, changed := substitute(p.Type, b)
			dirty = dirty || changed
			return Property{Type: t, Optional: p.Optional}
		})
		if !dirty {
			return x, false
		}
		return out, true

	case *Union:
		members, changed := substituteList(x.Members, b)
		if !changed {
			return x, false
		}
		return &Union{Members: members}, true

	case *Intersection:
		members, changed := substituteList(x.Members, b)
		if !changed {
			return x, false
		}
		return &Intersection{Members: members}, true

	case *GenericParam:
		c, cc := substituteOptional(x.Constraint, b)
		d, dc := substituteOptional(x.Default, b)
		if !cc && !dc {
			return x, false
		}
		return &GenericParam{Name: x.Name, Constraint: c, Default: d}, true

	case *Template:
		parts := make([]TemplatePart, len(x.Parts))
		dirty := false
		for i, p := range x.Parts {
			if p.IsLiteral() {
				parts[i] = p
				continue
			}
			t, changed := substitute(p.Type, b)
			dirty = dirty || changed
			parts[i] = TemplatePart{Type: t}
		}
		if !dirty {
			return x, false
		}
		return &Template{Parts: parts}, true
	}
	return n, false
}

func substituteOptional(n Node, b Bindings) (Node, bool) {
	if n == nil {
		return nil, false
	}
	return substitute(n, b)
}

func substituteList(nodes []Node, b Bindings) ([]Node, bool) {
	if len(nodes) == 0 {
		return nodes, false
	}
	out := make([]Node, len(nodes))
	changed := false
	for i, n := range nodes {
		var c bool
		out[i], c = substitute(n, b)
		changed = changed || c
	}
	return out, changed
}

// ContainsParameter reports whether n refers to any type parameter.
func ContainsParameter(n Node) bool {
	found := false
	Walk(n, func(x Node) bool {
		if r, ok := x.(*Ref); ok && r.Parameter {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the current node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch x := n.(type) {
	case *Array:
		Walk(x.Element, fn)
	case *Tuple:
		for _, el := range x.Elements {
			Walk(el.Type, fn)
		}
	case *Object:
		x.Each(func(_ string, p Property) bool {
			Walk(p.Type, fn)
			return true
		})
	case *Union:
		for _, m := range x.Members {
			Walk(m, fn)
		}
	case *Intersection:
		for _, m := range x.Members {
			Walk(m, fn)
		}
	case *Ref:
		for _, a := range x.TypeArguments {
			Walk(a, fn)
		}
	case *GenericParam:
		Walk(x.Constraint, fn)
		Walk(x.Default, fn)
	case *Template:
		for _, p := range x.Parts {
			if !p.IsLiteral() {
				Walk(p.Type, fn)
			}
		}
	}
}
