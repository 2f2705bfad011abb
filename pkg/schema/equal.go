package schema

// Equal reports whether a and b are structurally identical. Property order
// is significant.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Primitive:
		return x.Name == b.(*Primitive).Name
	case *Literal:
		return x.Value == b.(*Literal).Value
	case *Array:
		return Equal(x.Element, b.(*Array).Element)
	case *Tuple:
		y := b.(*Tuple)
		if len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			ex, ey := x.Elements[i], y.Elements[i]
			if ex.Optional != ey.Optional || ex.Rest != ey.Rest || !Equal(ex.Type, ey.Type) {
				return false
			}
		}
		return true
	case *Object:
		return equalObjects(x, b.(*Object))
	case *Union:
		return equalLists(x.Members, b.(*Union).Members)
	case *Intersection:
		return equalLists(x.Members, b.(*Intersection).Members)
	case *Ref:
		y := b.(*Ref)
		return x.Name == y.Name && x.Parameter == y.Parameter &&
			x.External == y.External && equalLists(x.TypeArguments, y.TypeArguments)
	case *GenericParam:
		y := b.(*GenericParam)
		return x.Name == y.Name && Equal(x.Constraint, y.Constraint) && Equal(x.Default, y.Default)
	case *Template:
		y := b.(*Template)
		if len(x.Parts) != len(y.Parts) {
			return false
		}
		for i := range x.Parts {
			if x.Parts[i].Text != y.Parts[i].Text || !Equal(x.Parts[i].Type, y.Parts[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualDeclarations reports whether two declarations are structurally
// identical.
func EqualDeclarations(a, b *Declaration) bool {
	if a.Name != b.Name || a.Exported != b.Exported || len(a.TypeParameters) != len(b.TypeParameters) {
		return false
	}
	for i := range a.TypeParameters {
		if !Equal(a.TypeParameters[i], b.TypeParameters[i]) {
			return false
		}
	}
	return Equal(a.Body, b.Body)
}

// EqualSchemas reports whether two schemas hold identical declarations in
// the same order.
func EqualSchemas(a, b *Schema) bool {
	da, db := a.Declarations(), b.Declarations()
	if len(da) != len(db) {
		return false
	}
	for i := range da {
		if !EqualDeclarations(da[i], db[i]) {
			return false
		}
	}
	return true
}

func equalLists(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalObjects(a, b *Object) bool {
	if a.Len() != b.Len() {
		return false
	}
	ka, kb := a.Keys(), b.Keys()
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
		pa, _ := a.Get(ka[i])
		pb, _ := b.Get(kb[i])
		if pa.Optional != pb.Optional || !Equal(pa.Type, pb.Type) {
			return false
		}
	}
	return true
}
