package converter

import (
	"strconv"
	"strings"

	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// resolveIndexedAccess resolves Base[Key]. String keys select properties,
// number selects array and tuple elements, and a union of keys yields the
// union of the selections.
func (r *run) resolveIndexedAccess(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	base, err := r.resolve(t.Object, b)
	if err != nil {
		return nil, err
	}
	index, err := r.resolve(t.Index, b)
	if err != nil {
		return nil, err
	}
	return r.index(base, index, t)
}

func (r *run) index(base, index schema.Node, at *checker.Type) (schema.Node, error) {
	if name, ok := parameterOf(index); ok {
		return nil, &parameterError{param: name, op: "indexed access", loc: locationOf(at)}
	}
	if u, ok := index.(*schema.Union); ok {
		members := make([]schema.Node, 0, len(u.Members))
		for _, key := range u.Members {
			n, err := r.index(base, key, at)
			if err != nil {
				return nil, err
			}
			members = append(members, n)
		}
		return schema.NewUnion(members...), nil
	}

	switch x := base.(type) {
	case *schema.Ref:
		leave, err := r.enter(at)
		if err != nil {
			return nil, err
		}
		defer leave()
		expanded, err := r.expand(x, at, "indexed access")
		if err != nil {
			return nil, err
		}
		return r.index(expanded, index, at)

	case *schema.Union:
		members := make([]schema.Node, 0, len(x.Members))
		for _, m := range x.Members {
			n, err := r.index(m, index, at)
			if err != nil {
				return nil, err
			}
			members = append(members, n)
		}
		return schema.NewUnion(members...), nil

	case *schema.Array:
		if isNumberKey(index) {
			return x.Element, nil
		}

	case *schema.Tuple:
		return indexTuple(x, index, at)
	}

	key, ok := stringKey(index)
	if !ok {
		return nil, unsupported(at, "index %s into %s", index, base)
	}
	obj, err := r.toObject(base, at)
	if err != nil {
		return nil, err
	}
	prop, ok := obj.Get(key)
	if !ok {
		return nil, unknownMember(at, "property %q does not exist on %s", key, base)
	}
	return prop.Type, nil
}

func indexTuple(tuple *schema.Tuple, index schema.Node, at *checker.Type) (schema.Node, error) {
	if p, ok := index.(*schema.Primitive); ok && p.Name == schema.Number {
		members := make([]schema.Node, 0, len(tuple.Elements))
		for _, el := range tuple.Elements {
			members = append(members, elementType(el))
		}
		return schema.NewUnion(members...), nil
	}

	if l, ok := index.(*schema.Literal); ok {
		if f, isNum := l.Value.(float64); isNum {
			i := int(f)
			if float64(i) == f && i >= 0 && i < len(tuple.Elements) && !tuple.Elements[i].Rest {
				return tuple.Elements[i].Type, nil
			}
			return nil, unknownMember(at, "tuple has no element at index %s", l)
		}
	}
	if key, ok := stringKey(index); ok && key == "length" {
		return schema.NewPrimitive(schema.Number), nil
	}
	return nil, unsupported(at, "index %s into tuple", index)
}

// elementType is the type a tuple element contributes to T[number].
func elementType(el schema.TupleElement) schema.Node {
	if el.Rest {
		if arr, ok := el.Type.(*schema.Array); ok {
			return arr.Element
		}
	}
	return el.Type
}

func isNumberKey(n schema.Node) bool {
	switch x := n.(type) {
	case *schema.Primitive:
		return x.Name == schema.Number
	case *schema.Literal:
		_, ok := x.Value.(float64)
		return ok
	}
	return false
}

func stringKey(n schema.Node) (string, bool) {
	l, ok := n.(*schema.Literal)
	if !ok {
		return "", false
	}
	switch v := l.Value.(type) {
	case string:
		return v, true
	case float64:
		// obj[0] reads the property named "0".
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// resolveKeyOf resolves keyof T over an object to the union of its property
// names in order.
func (r *run) resolveKeyOf(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	operand, err := r.resolve(t.Operand, b)
	if err != nil {
		return nil, err
	}
	if name, ok := parameterOf(operand); ok {
		return nil, &parameterError{param: name, op: "keyof", loc: t.Location}
	}
	obj, err := r.toObject(operand, t)
	if err != nil {
		return nil, err
	}
	if obj.Len() == 0 {
		return schema.NewPrimitive(schema.Never), nil
	}
	members := make([]schema.Node, 0, obj.Len())
	for _, key := range obj.Keys() {
		members = append(members, schema.NewLiteral(key))
	}
	return schema.NewUnion(members...), nil
}

// resolveTypeQuery resolves typeof c and typeof c[K] over a constant.
func (r *run) resolveTypeQuery(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	if strings.Contains(t.Name, ".") {
		return nil, unsupported(t, "typeof member expression %s", t.Name)
	}
	c, ok := r.model.Constant(t.Name)
	if !ok {
		if _, imported := r.model.Import(t.Name); imported {
			return nil, unsupported(t, "typeof imported value %s", t.Name)
		}
		return nil, unresolved(t, "cannot find value %s", t.Name)
	}

	base, err := r.constantType(c, t)
	if err != nil {
		return nil, err
	}
	if t.Index == nil {
		return base, nil
	}
	index, err := r.resolve(t.Index, b)
	if err != nil {
		return nil, err
	}
	return r.index(base, index, t)
}

// constantType infers the type of a constant from its annotation or its
// initializer. Literal initializers keep their literal type on const
// bindings; arrays are only representable under "as const".
func (r *run) constantType(c *checker.Constant, at *checker.Type) (schema.Node, error) {
	if c.Type != nil {
		return r.resolve(c.Type, nil)
	}
	if c.Value == nil {
		return nil, unsupported(at, "%s has no initializer", c.Name)
	}

	switch c.Value.Kind {
	case checker.ValueLiteral:
		if c.Const || c.ConstAssertion {
			return literalNode(c.Value.Literal), nil
		}
		return widen(c.Value.Literal), nil

	case checker.ValueArray:
		if !c.ConstAssertion {
			return nil, unsupported(at, "%s is not a const array of literals", c.Name)
		}
		tuple := &schema.Tuple{Elements: make([]schema.TupleElement, 0, len(c.Value.Elements))}
		for _, el := range c.Value.Elements {
			if el.Kind != checker.ValueLiteral {
				return nil, unsupported(at, "%s is not a const array of literals", c.Name)
			}
			tuple.Elements = append(tuple.Elements, schema.TupleElement{Type: literalNode(el.Literal)})
		}
		return tuple, nil
	}
	return nil, unsupported(at, "cannot infer the type of %s", c.Name)
}
