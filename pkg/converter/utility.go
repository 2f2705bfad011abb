package converter

import (
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// resolveUtility handles Pick, Omit, Partial and Required. The source may be
// an Object, a Union (transformed member by member) or an Intersection
// (merged into one Object first).
func (r *run) resolveUtility(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	var want int
	switch t.Name {
	case "Pick", "Omit":
		want = 2
	default:
		want = 1
	}
	if len(t.Arguments) != want {
		return nil, unsupported(t, "%s takes %d type argument(s), got %d", t.Name, want, len(t.Arguments))
	}

	source, err := r.resolve(t.Arguments[0], b)
	if err != nil {
		return nil, err
	}

	var fn func(*schema.Object) *schema.Object
	switch t.Name {
	case "Pick", "Omit":
		keys, err := r.resolveKeys(t.Arguments[1], b)
		if err != nil {
			return nil, err
		}
		pick := t.Name == "Pick"
		fn = func(o *schema.Object) *schema.Object {
			return o.Filter(func(name string) bool { return keys[name] == pick })
		}
	case "Partial", "Required":
		optional := t.Name == "Partial"
		fn = func(o *schema.Object) *schema.Object {
			return o.Map(func(_ string, p schema.Property) schema.Property {
				return schema.Property{Type: p.Type, Optional: optional}
			})
		}
	}

	return r.transform(source, fn, t)
}

// transform applies fn to an object-like node.
func (r *run) transform(n schema.Node, fn func(*schema.Object) *schema.Object, at *checker.Type) (schema.Node, error) {
	switch x := n.(type) {
	case *schema.Object:
		return fn(x), nil
	case *schema.Union:
		members := make([]schema.Node, 0, len(x.Members))
		for _, m := range x.Members {
			out, err := r.transform(m, fn, at)
			if err != nil {
				return nil, err
			}
			members = append(members, out)
		}
		return schema.NewUnion(members...), nil
	case *schema.Intersection:
		merged, err := r.toObject(x, at)
		if err != nil {
			return nil, err
		}
		return fn(merged), nil
	case *schema.Ref:
		leave, err := r.enter(at)
		if err != nil {
			return nil, err
		}
		defer leave()
		expanded, err := r.expand(x, at, at.Name)
		if err != nil {
			return nil, err
		}
		return r.transform(expanded, fn, at)
	}
	return nil, unsupported(at, "%s of %s", at.Name, n)
}

// resolveKeys reads a key argument: one string literal or a union of them.
func (r *run) resolveKeys(t *checker.Type, b schema.Bindings) (map[string]bool, error) {
	n, err := r.resolve(t, b)
	if err != nil {
		return nil, err
	}
	return r.keySet(n, t)
}

func (r *run) keySet(n schema.Node, at *checker.Type) (map[string]bool, error) {
	keys := make(map[string]bool)
	var add func(schema.Node) error
	add = func(n schema.Node) error {
		switch x := n.(type) {
		case *schema.Literal:
			s, ok := x.Value.(string)
			if !ok {
				return unsupported(at, "key %s is not a string literal", x)
			}
			keys[s] = true
		case *schema.Union:
			for _, m := range x.Members {
				if err := add(m); err != nil {
					return err
				}
			}
		case *schema.Primitive:
			if x.Name != schema.Never {
				return unsupported(at, "key type %s is not a string literal", x)
			}
		case *schema.Ref:
			if x.Parameter {
				return &parameterError{param: x.Name, op: "key selection", loc: locationOf(at)}
			}
			leave, err := r.enter(at)
			if err != nil {
				return err
			}
			defer leave()
			expanded, err := r.expand(x, at, "key selection")
			if err != nil {
				return err
			}
			return add(expanded)
		default:
			return unsupported(at, "key type %s is not a string literal", n)
		}
		return nil
	}
	if err := add(n); err != nil {
		return nil, err
	}
	return keys, nil
}
