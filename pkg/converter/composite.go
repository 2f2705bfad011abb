package converter

import (
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

func (r *run) resolveArray(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	el, err := r.resolve(t.Element, b)
	if err != nil {
		return nil, err
	}
	return &schema.Array{Element: el}, nil
}

func (r *run) resolveTuple(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	tuple := &schema.Tuple{Elements: make([]schema.TupleElement, 0, len(t.Elements))}
	for _, el := range t.Elements {
		n, err := r.resolve(el.Type, b)
		if err != nil {
			return nil, err
		}
		tuple.Elements = append(tuple.Elements, schema.TupleElement{Type: n, Optional: el.Optional, Rest: el.Rest})
	}
	return tuple, nil
}

func (r *run) resolveObjectLiteral(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	obj := schema.NewObject()
	if err := r.applyMembers(obj, t.Members, b, t); err != nil {
		return nil, err
	}
	return obj, nil
}

// resolveInterface merges every base in extends order, then applies the
// interface's own members. Same-named members override earlier ones.
func (r *run) resolveInterface(d *checker.Declaration, b schema.Bindings) (schema.Node, error) {
	obj := schema.NewObject()
	for _, base := range d.Extends {
		n, err := r.resolve(base, b)
		if err != nil {
			return nil, err
		}
		baseObj, err := r.toObject(n, base)
		if err != nil {
			return nil, err
		}
		obj.Merge(baseObj)
	}
	if err := r.applyMembers(obj, d.Members, b, nil); err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *run) applyMembers(obj *schema.Object, members []checker.Member, b schema.Bindings, owner *checker.Type) error {
	for _, m := range members {
		if m.Kind != checker.MemberProperty {
			e := unsupported(owner, "%s", m.Kind)
			e.Location = m.Location
			return e
		}
		if m.Computed {
			e := unsupported(owner, "computed property name %s", m.Name)
			e.Location = m.Location
			return e
		}

		var n schema.Node = schema.NewPrimitive(schema.Any)
		if m.Type != nil {
			var err error
			if n, err = r.resolve(m.Type, b); err != nil {
				return err
			}
		}
		obj.Set(m.Name, schema.Property{Type: n, Optional: m.Optional})
	}
	return nil
}

// toObject views n as a single Object: objects as-is, intersections merged
// left to right, local references expanded. The result must not be mutated.
func (r *run) toObject(n schema.Node, at *checker.Type) (*schema.Object, error) {
	switch x := n.(type) {
	case *schema.Object:
		return x, nil
	case *schema.Intersection:
		merged := schema.NewObject()
		for _, m := range x.Members {
			obj, err := r.toObject(m, at)
			if err != nil {
				return nil, err
			}
			merged.Merge(obj)
		}
		return merged, nil
	case *schema.Ref:
		// Alias chains are followed under the depth limit.
		leave, err := r.enter(at)
		if err != nil {
			return nil, err
		}
		defer leave()
		expanded, err := r.expand(x, at, "object view")
		if err != nil {
			return nil, err
		}
		return r.toObject(expanded, at)
	}
	return nil, unsupported(at, "%s is not an object type", n)
}

// expand replaces a Ref by the body it names. op describes the caller for
// error messages.
func (r *run) expand(ref *schema.Ref, at *checker.Type, op string) (schema.Node, error) {
	if ref.Parameter {
		return nil, &parameterError{param: ref.Name, op: op, loc: locationOf(at)}
	}
	if ref.External {
		return nil, unsupported(at, "%s of external type %s", op, ref.Name)
	}
	d, ok := r.model.Lookup(ref.Name)
	if !ok {
		return nil, unresolved(at, "cannot find type %s", ref.Name)
	}

	n, err := r.instantiate(d, ref.TypeArguments, at)
	if err != nil {
		return nil, err
	}
	if again, ok := n.(*schema.Ref); ok && again.Name == ref.Name && !again.Parameter {
		return nil, unsupported(at, "%s of recursive type %s", op, ref.Name)
	}
	return n, nil
}

func locationOf(t *checker.Type) checker.Location {
	if t == nil {
		return checker.Location{}
	}
	return t.Location
}
