package converter

import (
	"strings"

	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// globalTypes are library types that have no canonical form. Naming one is
// an unsupported construct rather than an unresolved reference.
var globalTypes = map[string]bool{
	"Record": true, "Readonly": true, "Exclude": true, "Extract": true,
	"NonNullable": true, "Parameters": true, "ConstructorParameters": true,
	"ReturnType": true, "InstanceType": true, "Awaited": true,
	"Uppercase": true, "Lowercase": true, "Capitalize": true, "Uncapitalize": true,
	"ThisType": true, "NoInfer": true,
	"Promise": true, "PromiseLike": true, "Map": true, "Set": true,
	"WeakMap": true, "WeakSet": true, "ReadonlyMap": true, "ReadonlySet": true,
	"Date": true, "RegExp": true, "Error": true, "Function": true,
	"Object": true, "String": true, "Number": true, "Boolean": true,
	"Symbol": true, "BigInt": true, "Iterable": true, "Iterator": true,
}

// resolveReference looks a name up in order: type parameters in scope, local
// declarations, imports, then built-in types.
func (r *run) resolveReference(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	name := t.Name

	if bound, ok := b[name]; ok {
		if len(t.Arguments) > 0 {
			return nil, unsupported(t, "type parameter %s cannot take type arguments", name)
		}
		return bound, nil
	}

	if qualifier, _, ok := strings.Cut(name, "."); ok {
		if _, imported := r.model.Import(qualifier); imported {
			return r.externalReference(t, b)
		}
		return nil, unresolved(t, "cannot find namespace %s", qualifier)
	}

	if d, ok := r.model.Lookup(name); ok {
		return r.localReference(d, t, b)
	}

	if _, ok := r.model.Import(name); ok {
		return r.externalReference(t, b)
	}

	switch name {
	case "Array", "ReadonlyArray":
		return r.resolveArrayReference(t, b)
	case "Pick", "Omit", "Partial", "Required":
		return r.resolveUtility(t, b)
	}
	if globalTypes[name] {
		return nil, unsupported(t, "built-in type %s", name)
	}

	return nil, unresolved(t, "cannot find type %s", name)
}

func (r *run) localReference(d *checker.Declaration, t *checker.Type, b schema.Bindings) (schema.Node, error) {
	if d.Kind != checker.DeclTypeAlias && d.Kind != checker.DeclInterface {
		return nil, unsupported(t, "reference to %s %s", d.Kind, d.Name)
	}

	args, err := r.resolveArguments(t, b)
	if err != nil {
		return nil, err
	}

	if r.opts.References == ReferencesNamed {
		// Validate the arguments against the declaration before naming it.
		if _, err := r.bindArguments(d, args, t); err != nil {
			return nil, err
		}
		r.require(d)
		return schema.NewRef(d.Name, args...), nil
	}
	return r.instantiate(d, args, t)
}

func (r *run) externalReference(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	args, err := r.resolveArguments(t, b)
	if err != nil {
		return nil, err
	}
	ref := schema.NewRef(t.Name, args...)
	ref.External = true
	return ref, nil
}

func (r *run) resolveArrayReference(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	switch len(t.Arguments) {
	case 0:
		return &schema.Array{Element: schema.NewPrimitive(schema.Any)}, nil
	case 1:
		el, err := r.resolve(t.Arguments[0], b)
		if err != nil {
			return nil, err
		}
		return &schema.Array{Element: el}, nil
	}
	return nil, unsupported(t, "%s takes 1 type argument, got %d", t.Name, len(t.Arguments))
}
