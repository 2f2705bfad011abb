package converter

import (
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

func resolveKeyword(t *checker.Type) (schema.Node, error) {
	if schema.IsPrimitiveName(t.Name) {
		return schema.NewPrimitive(t.Name), nil
	}
	// object, symbol, bigint, this
	return nil, unsupported(t, "keyword type %s", t.Name)
}

func resolveLiteral(t *checker.Type) (schema.Node, error) {
	if t.Literal == nil {
		return nil, unsupported(t, "literal %s", t.Text)
	}
	return schema.NewLiteral(t.Literal.Value()), nil
}

// literalNode converts a constant initializer literal.
func literalNode(v *checker.LiteralValue) schema.Node {
	return schema.NewLiteral(v.Value())
}

// widen returns the primitive a mutable binding of literal v would have.
func widen(v *checker.LiteralValue) schema.Node {
	switch v.Kind {
	case checker.LiteralNumber:
		return schema.NewPrimitive(schema.Number)
	case checker.LiteralBoolean:
		return schema.NewPrimitive(schema.Boolean)
	default:
		return schema.NewPrimitive(schema.String)
	}
}
