package converter

import (
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// resolve converts one type expression under the in-scope bindings. Every
// checker kind has exactly one arm; anything else is unsupported.
func (r *run) resolve(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	if t == nil {
		return nil, unsupported(nil, "missing type")
	}

	leave, err := r.enter(t)
	if err != nil {
		return nil, err
	}
	defer leave()

	switch t.Kind {
	case checker.KindKeyword:
		return resolveKeyword(t)
	case checker.KindLiteral:
		return resolveLiteral(t)
	case checker.KindReference:
		return r.resolveReference(t, b)
	case checker.KindArray:
		return r.resolveArray(t, b)
	case checker.KindTuple:
		return r.resolveTuple(t, b)
	case checker.KindObject:
		return r.resolveObjectLiteral(t, b)
	case checker.KindUnion:
		members, err := r.resolveList(t.Types, b)
		if err != nil {
			return nil, err
		}
		return schema.NewUnion(members...), nil
	case checker.KindIntersection:
		members, err := r.resolveList(t.Types, b)
		if err != nil {
			return nil, err
		}
		return schema.NewIntersection(members...), nil
	case checker.KindTemplate:
		return r.resolveTemplate(t, b)
	case checker.KindIndexedAccess:
		return r.resolveIndexedAccess(t, b)
	case checker.KindTypeQuery:
		return r.resolveTypeQuery(t, b)
	case checker.KindKeyOf:
		return r.resolveKeyOf(t, b)
	case checker.KindConditional:
		return nil, unsupported(t, "conditional type %s", t.Text)
	case checker.KindFunction:
		return nil, unsupported(t, "function type %s", t.Text)
	default:
		return nil, unsupported(t, "type %s", t.Text)
	}
}

func (r *run) resolveList(types []*checker.Type, b schema.Bindings) ([]schema.Node, error) {
	out := make([]schema.Node, 0, len(types))
	for _, t := range types {
		n, err := r.resolve(t, b)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
